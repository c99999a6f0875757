package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statementkit/colgrid/internal/common"
	"github.com/statementkit/colgrid/internal/model"
)

// stubClient is a scriptable ParserClient.
type stubClient struct {
	mu           sync.Mutex
	parseCalls   int
	parseFn      func(call int) (*model.ParseResult, error)
	confirmErr   error
	lastSub      model.Submission
	pageImage    []byte
	pageImageErr error
}

func (c *stubClient) PageImage(_ context.Context, _ string, _ int) ([]byte, error) {
	return c.pageImage, c.pageImageErr
}

func (c *stubClient) ParsePreview(_ context.Context, _ string, _ map[string]model.ColumnType, _ []model.ColumnBound) (*model.ParseResult, error) {
	c.mu.Lock()
	c.parseCalls++
	call := c.parseCalls
	fn := c.parseFn
	c.mu.Unlock()
	if fn == nil {
		return &model.ParseResult{Status: "ok"}, nil
	}
	return fn(call)
}

func (c *stubClient) ConfirmMapping(_ context.Context, sub model.Submission) (*model.ConfirmResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSub = sub
	if c.confirmErr != nil {
		return nil, c.confirmErr
	}
	return &model.ConfirmResult{Status: "ok", PipelineID: "pipeline-1"}, nil
}

type stubSaver struct {
	saved []model.Template
	err   error
}

func (s *stubSaver) SaveTemplate(_ context.Context, t model.Template) error {
	s.saved = append(s.saved, t)
	return s.err
}

func testPreview() model.Preview {
	return model.Preview{
		Status:   "ok",
		BankID:   "devbank",
		BankName: "Dev Bank",
		Columns: []model.Column{
			{Label: "Data", Type: model.TypeDate, XMin: 40, XMax: 120},
			{Label: "Kwota", Type: model.TypeAmount, XMin: 120, XMax: 450},
		},
		Pages:    []model.PageDescriptor{{Width: 595, Height: 842}},
		FilePath: "/tmp/statements/upload-0001.pdf",
	}
}

func TestNewSeedsFromDetectedColumns(t *testing.T) {
	sess, err := New(testPreview(), &stubClient{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, sess.Columns().Len())
	assert.Equal(t, map[string]model.ColumnType{
		"0": model.TypeDate,
		"1": model.TypeAmount,
	}, sess.Mapping())
}

func TestNewPrefersFullTemplateMatch(t *testing.T) {
	preview := testPreview()
	preview.Template = &model.Template{
		BankID: "devbank",
		Columns: []model.Column{
			{Label: "Datum", Type: model.TypeDate, XMin: 30, XMax: 110},
			{Label: "Betrag", Type: model.TypeAmount, XMin: 110, XMax: 300},
			{Label: "Saldo", Type: model.TypeBalance, XMin: 300, XMax: 500},
		},
	}

	sess, err := New(preview, &stubClient{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, sess.Columns().Len())
	col, _ := sess.Columns().Column(0)
	assert.Equal(t, "Datum", col.Label)
}

func TestNewIgnoresPartialTemplateMatch(t *testing.T) {
	preview := testPreview()
	preview.Template = &model.Template{
		BankID:       "devbank",
		PartialMatch: true,
		Columns: []model.Column{
			{Label: "Datum", Type: model.TypeDate, XMin: 30, XMax: 110},
		},
	}

	sess, err := New(preview, &stubClient{}, nil)
	require.NoError(t, err)

	// Low-confidence matches must not override detection.
	assert.Equal(t, 2, sess.Columns().Len())
}

func TestNewFallsBackToSingleColumn(t *testing.T) {
	preview := testPreview()
	preview.Columns = nil

	sess, err := New(preview, &stubClient{}, nil)
	require.NoError(t, err)

	require.Equal(t, 1, sess.Columns().Len())
	col, _ := sess.Columns().Column(0)
	assert.Equal(t, model.TypeSkip, col.Type)
	assert.Equal(t, 595.0, col.XMax)
}

func TestNewRejectsIncompletePreviews(t *testing.T) {
	noFile := testPreview()
	noFile.FilePath = ""
	_, err := New(noFile, &stubClient{}, nil)
	assert.ErrorIs(t, err, common.ErrNoPreview)

	noPages := testPreview()
	noPages.Pages = nil
	_, err = New(noPages, &stubClient{}, nil)
	assert.Error(t, err)
}

func TestRefreshPreviewTruncatesSample(t *testing.T) {
	rows := make([]model.Transaction, 40)
	for i := range rows {
		rows[i] = model.Transaction{Title: fmt.Sprintf("row %d", i)}
	}
	client := &stubClient{parseFn: func(_ int) (*model.ParseResult, error) {
		return &model.ParseResult{Status: "ok", TransactionCount: 40, Transactions: rows}, nil
	}}

	sess, err := New(testPreview(), client, nil)
	require.NoError(t, err)

	result, err := sess.RefreshPreview(context.Background(), sess.Snapshot())
	require.NoError(t, err)
	assert.Len(t, result.Transactions, MaxPreviewRows)
	// The total count survives truncation for the "showing N of M" line.
	assert.Equal(t, 40, result.TransactionCount)
}

func TestRefreshPreviewDropsStaleResponses(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	client := &stubClient{parseFn: func(call int) (*model.ParseResult, error) {
		if call == 1 {
			close(started)
			<-release
		}
		return &model.ParseResult{Status: "ok", TransactionCount: call}, nil
	}}

	sess, err := New(testPreview(), client, nil)
	require.NoError(t, err)

	firstSnap := sess.Snapshot()
	firstErr := make(chan error, 1)
	go func() {
		_, err := sess.RefreshPreview(context.Background(), firstSnap)
		firstErr <- err
	}()

	<-started
	// A second edit issues a newer request while the first is in flight.
	second, err := sess.RefreshPreview(context.Background(), sess.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, 2, second.TransactionCount)

	close(release)
	assert.ErrorIs(t, <-firstErr, common.ErrStalePreview)

	// The retained result is the latest issued, not the last resolved.
	assert.Equal(t, 2, sess.LastResult().TransactionCount)
}

func TestSnapshotIsDetachedFromLiveStores(t *testing.T) {
	sess, err := New(testPreview(), &stubClient{}, nil)
	require.NoError(t, err)

	snap := sess.Snapshot()
	sess.Columns().Split(0)
	sess.Columns().Retype(0, model.TypeDebit)

	assert.Len(t, snap.Columns, 2)
	assert.Equal(t, model.TypeDate, snap.Columns[0].Type)
	assert.Equal(t, map[string]model.ColumnType{
		"0": model.TypeDate,
		"1": model.TypeAmount,
	}, snap.Mapping)
}

func TestRefreshPreviewConcurrentWithEdits(t *testing.T) {
	sess, err := New(testPreview(), &stubClient{}, nil)
	require.NoError(t, err)

	// Structural edits land on this goroutine while earlier snapshots are
	// round-tripping on another, as in the editor's command wiring. The
	// round-trip must only ever touch its snapshot, never the live stores.
	snaps := make(chan Snapshot)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for snap := range snaps {
			_, _ = sess.RefreshPreview(context.Background(), snap)
		}
	}()

	for i := 0; i < 200; i++ {
		sess.Columns().Split(0)
		sess.Columns().Remove(1)
		sess.Columns().Retype(0, model.TypeAmount)
		sess.Headers().Add()
		sess.Headers().Remove(0)
		snaps <- sess.Snapshot()
	}
	close(snaps)
	<-done

	assert.Equal(t, 2, sess.Columns().Len())
}

func TestRefreshPreviewErrorPreservesState(t *testing.T) {
	client := &stubClient{parseFn: func(_ int) (*model.ParseResult, error) {
		return nil, fmt.Errorf("backend error: 500 - boom")
	}}

	sess, err := New(testPreview(), client, nil)
	require.NoError(t, err)
	sess.Columns().Retype(1, model.TypeDebit)

	_, err = sess.RefreshPreview(context.Background(), sess.Snapshot())
	require.Error(t, err)

	// A failed round-trip never rolls back the user's edit.
	col, _ := sess.Columns().Column(1)
	assert.Equal(t, model.TypeDebit, col.Type)
}

func TestSubmission(t *testing.T) {
	sess, err := New(testPreview(), &stubClient{}, nil)
	require.NoError(t, err)
	sess.Headers().Add()
	sess.Headers().SetType(0, model.FieldCurrency)
	sess.Headers().SetValue(0, "PLN")

	sub := sess.Submission(sess.Snapshot(), true, "devbank")

	assert.Equal(t, "/tmp/statements/upload-0001.pdf", sub.FilePath)
	assert.Equal(t, []string{"Data", "Kwota"}, sub.HeaderCells)
	assert.Equal(t, map[model.HeaderFieldType]string{model.FieldCurrency: "PLN"}, sub.HeaderFields)
	require.Len(t, sub.Bounds, 2)
	assert.Equal(t, "Data", sub.Bounds[0].Label)
	assert.Equal(t, model.TypeDate, sub.Bounds[0].Type)
	assert.True(t, sub.SaveTemplate)
}

func TestConfirmSavesTemplate(t *testing.T) {
	client := &stubClient{}
	saver := &stubSaver{}

	sess, err := New(testPreview(), client, saver)
	require.NoError(t, err)

	result, err := sess.Confirm(context.Background(), sess.Snapshot(), true, "devbank")
	require.NoError(t, err)
	assert.Equal(t, "pipeline-1", result.PipelineID)

	require.Len(t, saver.saved, 1)
	assert.Equal(t, "devbank", saver.saved[0].BankID)
	assert.Len(t, saver.saved[0].Columns, 2)
}

func TestConfirmTemplateSaveFailureIsNotFatal(t *testing.T) {
	saver := &stubSaver{err: fmt.Errorf("disk full")}

	sess, err := New(testPreview(), &stubClient{}, saver)
	require.NoError(t, err)

	// The pipeline start succeeded; local persistence is best-effort.
	result, err := sess.Confirm(context.Background(), sess.Snapshot(), true, "devbank")
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestConfirmWithoutSaveSkipsTemplate(t *testing.T) {
	saver := &stubSaver{}
	sess, err := New(testPreview(), &stubClient{}, saver)
	require.NoError(t, err)

	_, err = sess.Confirm(context.Background(), sess.Snapshot(), false, "")
	require.NoError(t, err)
	assert.Empty(t, saver.saved)
}
