package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statementkit/colgrid/internal/model"
)

func TestSeedHeaderFields(t *testing.T) {
	preview := model.Preview{
		BankName: "Dev Bank S.A.",
		HeaderRegion: model.HeaderRegion{
			RawText:        "Rachunek: PL61 1090 1014 0000 0712 1981 2874",
			AccountNumber:  "PL61 1090 1014 0000 0712 1981 2874",
			OpeningBalance: "12 450,00",
			PeriodFrom:     "2026-07-01",
			PeriodTo:       "2026-07-31",
		},
	}

	h := SeedHeaderFields(preview)
	fields := h.Fields()

	require.Len(t, fields, 5)
	// Bank name is unshifted to the front from the preview's top level.
	assert.Equal(t, model.FieldBankName, fields[0].Type)
	assert.Equal(t, "Dev Bank S.A.", fields[0].Value)
	assert.Equal(t, model.FieldAccountNumber, fields[1].Type)
	// Closing balance was empty and must not be seeded.
	for _, f := range fields {
		assert.NotEqual(t, model.FieldClosingBalance, f.Type)
	}
}

func TestSeedHeaderFieldsIBANFallback(t *testing.T) {
	t.Run("uncaptured IBAN appended", func(t *testing.T) {
		h := SeedHeaderFields(model.Preview{
			HeaderRegion: model.HeaderRegion{
				RawText: "Konto: 61 1090 1014 0000 0712 1981 2874\nOkres lipiec",
			},
		})

		fields := h.Fields()
		require.Len(t, fields, 1)
		assert.Equal(t, model.FieldAccountNumber, fields[0].Type)
		assert.Equal(t, "61 1090 1014 0000 0712 1981 2874", fields[0].Value)
		assert.Equal(t, "IBAN (detected)", fields[0].RawLabel)
	})

	t.Run("already captured IBAN not duplicated", func(t *testing.T) {
		h := SeedHeaderFields(model.Preview{
			HeaderRegion: model.HeaderRegion{
				RawText:       "PL61 1090 1014 0000 0712 1981 2874",
				AccountNumber: "PL61109010140000071219812874",
			},
		})

		count := 0
		for _, f := range h.Fields() {
			if f.Type == model.FieldAccountNumber {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("no IBAN in text", func(t *testing.T) {
		h := SeedHeaderFields(model.Preview{
			HeaderRegion: model.HeaderRegion{RawText: "Saldo: 100,00"},
		})
		assert.Equal(t, 0, h.Len())
	})
}

func TestHeaderFieldEditing(t *testing.T) {
	h := SeedHeaderFields(model.Preview{})

	i := h.Add()
	assert.Equal(t, 0, i)
	require.Equal(t, 1, h.Len())
	assert.Equal(t, model.FieldSkip, h.Fields()[0].Type)

	h.SetType(0, model.FieldCurrency)
	h.SetValue(0, "PLN")
	assert.Equal(t, model.FieldCurrency, h.Fields()[0].Type)
	assert.Equal(t, "PLN", h.Fields()[0].Value)

	// Out-of-range edits are ignored.
	h.SetType(5, model.FieldBankName)
	h.SetValue(-1, "x")
	h.Remove(7)
	assert.Equal(t, 1, h.Len())

	h.Remove(0)
	assert.Equal(t, 0, h.Len())
}

func TestHeaderFieldsSerialize(t *testing.T) {
	h := &HeaderFields{}
	for i, f := range []model.HeaderField{
		{Type: model.FieldBankName, Value: "Dev Bank"},
		{Type: model.FieldSkip, Value: "ignored"},
		{Type: model.FieldCurrency, Value: "   "},
		{Type: model.FieldAccountNumber, Value: " PL61 1090 "},
		{Type: model.FieldAccountNumber, Value: "PL99 2490"},
	} {
		h.Add()
		h.SetType(i, f.Type)
		h.SetValue(i, f.Value)
	}

	got := h.Serialize()

	assert.Equal(t, map[model.HeaderFieldType]string{
		// Values are trimmed; skip and blank entries dropped; the last
		// value for a duplicated type wins.
		model.FieldBankName:      "Dev Bank",
		model.FieldAccountNumber: "PL99 2490",
	}, got)
}
