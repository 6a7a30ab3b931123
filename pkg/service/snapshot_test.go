package service

import (
	"context"
	"reflect"
	"testing"

	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
	pkgio "github.com/matzehuels/grapes/pkg/io"
	"github.com/matzehuels/grapes/pkg/model"
	"github.com/matzehuels/grapes/pkg/store/memory"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestService(t)
	if err := src.CreateProduct(ctx, "suite"); err != nil {
		t.Fatal(err)
	}

	snap, err := src.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(snap.Modules) != 3 {
		t.Errorf("exported %d modules, want 3", len(snap.Modules))
	}
	// 4 module artifacts + 5 standalone
	if len(snap.Artifacts) != 9 {
		t.Errorf("exported %d artifacts, want 9", len(snap.Artifacts))
	}

	dst := New(memory.New(), nil)
	st, err := dst.Import(ctx, snap)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	want := ImportStats{Modules: 3, Artifacts: 9, Licenses: 3, Organizations: 1, Products: 1}
	if st != want {
		t.Errorf("Import stats = %+v, want %+v", st, want)
	}

	again, err := dst.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(snap, again) {
		t.Errorf("round trip changed the catalog:\n got %+v\nwant %+v", again, snap)
	}
}

func TestImportRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		snap *pkgio.Snapshot
		code grapeserrors.Code
	}{
		{
			name: "bad gavc",
			snap: &pkgio.Snapshot{Artifacts: []model.Artifact{{ArtifactID: "orphan"}}},
			code: grapeserrors.ErrCodeInvalidGavc,
		},
		{
			name: "empty module name",
			snap: &pkgio.Snapshot{Modules: []model.Module{{Version: "1.0"}}},
			code: grapeserrors.ErrCodeInvalidInput,
		},
		{
			name: "traversal in product",
			snap: &pkgio.Snapshot{Products: []model.Product{{Name: "../etc"}}},
			code: grapeserrors.ErrCodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(memory.New(), nil).Import(ctx, tt.snap)
			wantCode(t, err, tt.code)
		})
	}
}
