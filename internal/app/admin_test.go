package app

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/verse-service/internal/adapters/storage/memory"
	"github.com/jsamuelsen/verse-service/internal/domain"
)

func TestAdminService_LoginLogout(t *testing.T) {
	svc := newAdminService(t, memory.New(), AdminConfig{})
	ctx := context.Background()

	_, err := svc.Login(ctx, "wrong")
	require.Error(t, err)
	assert.True(t, domain.IsUnauthorized(err))

	token, err := svc.Login(ctx, "admin123")
	require.NoError(t, err)
	assert.True(t, svc.Authorized(token))

	svc.Logout(ctx, token)
	assert.False(t, svc.Authorized(token))
}

func TestAdminService_CreateTrimsAndValidates(t *testing.T) {
	svc := newAdminService(t, memory.New(), AdminConfig{})
	ctx := context.Background()
	require.NoError(t, svc.ClearAll(ctx))

	created, err := svc.Create(ctx, domain.Quotation{
		PrimaryText:        "  甲  ",
		PrimaryReference:   "乙",
		SecondaryText:      " A ",
		SecondaryReference: "B",
	})
	require.NoError(t, err)
	assert.Equal(t, "甲", created.PrimaryText)
	assert.Equal(t, "A", created.SecondaryText)
	assert.NotEmpty(t, created.ID)

	_, err = svc.Create(ctx, domain.Quotation{PrimaryText: "甲", PrimaryReference: "乙", SecondaryText: "   ", SecondaryReference: "B"})
	require.Error(t, err)
	assert.Equal(t, domain.MsgFillAllFields, domain.UserMessage(err))

	list, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Position)
}

func TestAdminService_UpdateInPlace(t *testing.T) {
	store := memory.New()
	svc := newAdminService(t, store, AdminConfig{})
	ctx := context.Background()

	before, err := svc.List(ctx, "")
	require.NoError(t, err)
	target := before[1]

	updated, err := svc.Update(ctx, target.ID, domain.Quotation{
		PrimaryText: "新", PrimaryReference: "新 1:1", SecondaryText: "New", SecondaryReference: "New 1:1",
	})
	require.NoError(t, err)
	assert.Equal(t, target.ID, updated.ID)

	after, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, after, len(before))
	assert.Equal(t, "新", after[1].PrimaryText)
	assert.Equal(t, 2, after[1].Position)

	_, err = svc.Update(ctx, "missing", updated)
	assert.True(t, domain.IsNotFound(err))
}

func TestAdminService_Save(t *testing.T) {
	svc := newAdminService(t, memory.New(), AdminConfig{})
	ctx := context.Background()
	q := verse("", "甲", "a")

	created, isNew, err := svc.Save(ctx, "", q)
	require.NoError(t, err)
	assert.True(t, isNew)

	_, isNew, err = svc.Save(ctx, created.ID, q)
	require.NoError(t, err)
	assert.False(t, isNew)
}

func TestAdminService_DeleteShiftsPositions(t *testing.T) {
	svc := newAdminService(t, memory.New(), AdminConfig{})
	ctx := context.Background()

	before, err := svc.List(ctx, "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, before[0].ID))

	after, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, after, len(before)-1)
	assert.Equal(t, before[1].ID, after[0].ID)
	assert.Equal(t, 1, after[0].Position)

	assert.True(t, domain.IsNotFound(svc.Delete(ctx, before[0].ID)))
}

func TestAdminService_ClearAllSurvivesRestart(t *testing.T) {
	store := memory.New()
	svc := newAdminService(t, store, AdminConfig{})
	ctx := context.Background()

	require.NoError(t, svc.ClearAll(ctx))

	restarted := newAdminService(t, store, AdminConfig{})

	stats, err := restarted.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total, "defaults must not come back after clearing")
}

func TestAdminService_Stats(t *testing.T) {
	svc := newAdminService(t, memory.New(), AdminConfig{})
	svc.now = func() time.Time { return time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC) }

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(domain.DefaultQuotations()), stats.Total)
	assert.Equal(t, "2024年3月5日星期二", stats.Date)
}

func TestAdminService_Export(t *testing.T) {
	svc := newAdminService(t, memory.New(), AdminConfig{})
	svc.now = func() time.Time { return time.UnixMilli(1700000000123) }

	file, err := svc.Export(context.Background(), "json")
	require.NoError(t, err)
	assert.Equal(t, "verses_1700000000123.json", file.Name)
	assert.Equal(t, len(domain.DefaultQuotations()), file.Count)
	assert.True(t, strings.HasPrefix(string(file.Data), "[\n  {"))

	yamlFile, err := svc.Export(context.Background(), "yaml")
	require.NoError(t, err)
	assert.Equal(t, "verses_1700000000123.yaml", yamlFile.Name)

	_, err = svc.Export(context.Background(), "xml")
	assert.True(t, domain.IsValidation(err))
}

func TestAdminService_ExportImportRoundTrip(t *testing.T) {
	src := newAdminService(t, memory.New(), AdminConfig{})
	ctx := context.Background()

	file, err := src.Export(ctx, "json")
	require.NoError(t, err)

	dst := newAdminService(t, memory.New(), AdminConfig{})
	require.NoError(t, dst.ClearAll(ctx))

	n, err := dst.Import(ctx, "json", bytes.NewReader(file.Data))
	require.NoError(t, err)
	assert.Equal(t, file.Count, n)

	want, err := src.List(ctx, "")
	require.NoError(t, err)

	got, err := dst.List(ctx, "")
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("collection mismatch after round trip (-want +got):\n%s", diff)
	}
}

func TestAdminService_Import(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		body      string
		strict    bool
		wantCount int
		wantMsg   string
	}{
		{
			name:      "appends list",
			format:    "json",
			body:      `[{"zh":"甲","en":"A","refZh":"乙","refEn":"B"},{"zh":"丙","en":"C","refZh":"丁","refEn":"D"}]`,
			wantCount: 2,
		},
		{
			name:      "empty list",
			format:    "json",
			body:      `[]`,
			wantCount: 0,
		},
		{
			name:    "object is wrong format",
			format:  "json",
			body:    `{"zh":"甲"}`,
			wantMsg: domain.MsgBadFileFormat,
		},
		{
			name:    "garbage fails to parse",
			format:  "json",
			body:    `not json`,
			wantMsg: domain.MsgParseFailed,
		},
		{
			name:      "lenient keeps malformed elements",
			format:    "json",
			body:      `[{"zh":"甲"}, 5]`,
			wantCount: 2,
		},
		{
			name:    "strict rejects malformed elements",
			format:  "json",
			body:    `[{"zh":"甲","en":"A","refZh":"乙","refEn":"B"}, {"zh":"甲"}]`,
			strict:  true,
			wantMsg: domain.MsgBadFileFormat,
		},
		{
			name:      "yaml document",
			format:    "yaml",
			body:      "- zh: 甲\n  en: A\n  refZh: 乙\n  refEn: B\n",
			wantCount: 1,
		},
		{
			name:    "unknown format",
			format:  "csv",
			body:    "zh,en",
			wantMsg: domain.MsgBadFileFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAdminService(t, memory.New(), AdminConfig{StrictImport: tt.strict})
			ctx := context.Background()

			before, err := svc.List(ctx, "")
			require.NoError(t, err)

			n, err := svc.Import(ctx, tt.format, strings.NewReader(tt.body))

			after, listErr := svc.List(ctx, "")
			require.NoError(t, listErr)

			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.True(t, domain.IsValidation(err))
				assert.Equal(t, tt.wantMsg, domain.UserMessage(err))
				assert.Len(t, after, len(before), "collection unchanged on failure")

				if tt.strict {
					assert.Contains(t, err.Error(), "element 2:")
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, n)
			assert.Len(t, after, len(before)+tt.wantCount)
		})
	}
}

func TestAdminService_ImportKeepsOrAssignsIDs(t *testing.T) {
	svc := newAdminService(t, memory.New(), AdminConfig{})
	ctx := context.Background()

	existing, err := svc.List(ctx, "")
	require.NoError(t, err)

	body := `[
		{"id":"fresh-id","zh":"甲","en":"A","refZh":"乙","refEn":"B"},
		{"id":"` + existing[0].ID + `","zh":"丙","en":"C","refZh":"丁","refEn":"D"}
	]`

	_, err = svc.Import(ctx, "json", strings.NewReader(body))
	require.NoError(t, err)

	after, err := svc.List(ctx, "")
	require.NoError(t, err)

	imported := after[len(existing):]
	assert.Equal(t, "fresh-id", imported[0].ID)
	assert.NotEqual(t, existing[0].ID, imported[1].ID)
	assert.NotEmpty(t, imported[1].ID)
}

func TestAdminService_ImportIsExclusive(t *testing.T) {
	svc := newAdminService(t, memory.New(), AdminConfig{})

	svc.importMu.Lock()
	_, err := svc.Import(context.Background(), "json", strings.NewReader("[]"))
	svc.importMu.Unlock()

	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestAdminService_ChangePassword(t *testing.T) {
	svc := newAdminService(t, memory.New(), AdminConfig{})
	ctx := context.Background()

	assert.True(t, domain.IsValidation(svc.ChangePassword(ctx, "abc")))
	require.NoError(t, svc.ChangePassword(ctx, "newpass"))

	_, err := svc.Login(ctx, "admin123")
	assert.True(t, domain.IsUnauthorized(err))

	_, err = svc.Login(ctx, "newpass")
	require.NoError(t, err)
}
