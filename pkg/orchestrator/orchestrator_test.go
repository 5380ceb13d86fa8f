package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/deltaneutral/dnfvault/pkg/download"
	"github.com/deltaneutral/dnfvault/pkg/model"
	ocmocks "github.com/deltaneutral/dnfvault/pkg/orchestrator/mocks"
)

func TestRun_PurchasesAndGroups(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	purchase := model.Container{ID: 11, Name: "OptionEOD", Kind: model.KindPurchase}
	group := model.Container{ID: 3, Name: "eodLevel2", Kind: model.KindGroup}
	files := []model.FileRecord{{UUIDFilename: "abc.zip", DisplayName: "L2_20260115.zip"}}

	outDir := t.TempDir()

	api := ocmocks.NewMockVaultAPI(ctrl)
	api.EXPECT().ListPurchases(gomock.Any()).Return([]model.Container{purchase}, nil).Times(1)
	api.EXPECT().ListGroups(gomock.Any()).Return([]model.Container{group}, nil).Times(1)
	api.EXPECT().ListFiles(gomock.Any(), purchase).Return(files, nil).Times(1)
	api.EXPECT().ListFiles(gomock.Any(), group).Return(files, nil).Times(1)

	dl := ocmocks.NewMockDownloader(ctrl)
	dl.EXPECT().FetchBatch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, records []model.FileRecord, dir string, opts download.Options) model.Summary {
			if len(records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(records))
			}
			wantPurchase := filepath.Join(outDir, "Purchases", "11 - OptionEOD")
			wantGroup := filepath.Join(outDir, "Groups", "3 - eodLevel2")
			if dir != wantPurchase && dir != wantGroup {
				t.Fatalf("unexpected dir: %s", dir)
			}
			if opts.Concurrency != 2 {
				t.Fatalf("expected concurrency 2, got %d", opts.Concurrency)
			}
			return model.Summary{Downloaded: 1}
		},
	).Times(2)

	orch := &Orchestrator{Client: api, DL: dl}

	summary, err := orch.Run(context.Background(), Options{OutputDir: outDir, Concurrency: 2})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Downloaded != 2 {
		t.Fatalf("expected 2 downloaded, got %d", summary.Downloaded)
	}
}

func TestRun_ListingFailureIsIsolated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	group := model.Container{ID: 3, Name: "eodLevel2", Kind: model.KindGroup}

	api := ocmocks.NewMockVaultAPI(ctrl)
	api.EXPECT().ListPurchases(gomock.Any()).Return(nil, errors.New("boom")).Times(1)
	api.EXPECT().ListGroups(gomock.Any()).Return([]model.Container{group}, nil).Times(1)
	api.EXPECT().ListFiles(gomock.Any(), group).Return([]model.FileRecord{{UUIDFilename: "a.zip"}}, nil).Times(1)

	dl := ocmocks.NewMockDownloader(ctrl)
	dl.EXPECT().FetchBatch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(model.Summary{Downloaded: 1}).Times(1)

	orch := &Orchestrator{Client: api, DL: dl}

	summary, err := orch.Run(context.Background(), Options{OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Downloaded != 1 {
		t.Fatalf("expected 1 downloaded, got %d", summary.Downloaded)
	}
}

func TestRun_ContainerFilesFailureIsIsolated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p1 := model.Container{ID: 1, Name: "Bad", Kind: model.KindPurchase}
	p2 := model.Container{ID: 2, Name: "Good", Kind: model.KindPurchase}

	api := ocmocks.NewMockVaultAPI(ctrl)
	api.EXPECT().ListPurchases(gomock.Any()).Return([]model.Container{p1, p2}, nil).Times(1)
	api.EXPECT().ListGroups(gomock.Any()).Return(nil, nil).Times(1)
	api.EXPECT().ListFiles(gomock.Any(), p1).Return(nil, errors.New("server error")).Times(1)
	api.EXPECT().ListFiles(gomock.Any(), p2).Return([]model.FileRecord{{UUIDFilename: "ok.zip"}}, nil).Times(1)

	dl := ocmocks.NewMockDownloader(ctrl)
	dl.EXPECT().FetchBatch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(model.Summary{Downloaded: 1}).Times(1)

	orch := &Orchestrator{Client: api, DL: dl}

	summary, err := orch.Run(context.Background(), Options{OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Downloaded != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestRun_GroupFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wanted := model.Container{ID: 3, Name: "eodLevel2", Kind: model.KindGroup}
	unwanted := model.Container{ID: 4, Name: "other", Kind: model.KindGroup}

	api := ocmocks.NewMockVaultAPI(ctrl)
	api.EXPECT().ListPurchases(gomock.Any()).Return(nil, nil).Times(1)
	api.EXPECT().ListGroups(gomock.Any()).Return([]model.Container{wanted, unwanted}, nil).Times(1)
	// Only the wanted group is listed; the filter is case-insensitive.
	api.EXPECT().ListFiles(gomock.Any(), wanted).Return([]model.FileRecord{{UUIDFilename: "a.zip"}}, nil).Times(1)

	dl := ocmocks.NewMockDownloader(ctrl)
	dl.EXPECT().FetchBatch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(model.Summary{Downloaded: 1}).Times(1)

	orch := &Orchestrator{Client: api, DL: dl}

	_, err := orch.Run(context.Background(), Options{OutputDir: t.TempDir(), Groups: []string{"EODLEVEL2"}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestRun_DaysFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	purchase := model.Container{ID: 1, Name: "OptionEOD", Kind: model.KindPurchase}
	files := []model.FileRecord{
		{UUIDFilename: "old.zip", CreatedAt: "2020-01-01 00:00:00"},
		{UUIDFilename: "dateless.zip"},
		{UUIDFilename: "garbled.zip", CreatedAt: "not-a-date"},
	}

	api := ocmocks.NewMockVaultAPI(ctrl)
	api.EXPECT().ListPurchases(gomock.Any()).Return([]model.Container{purchase}, nil).Times(1)
	api.EXPECT().ListGroups(gomock.Any()).Return(nil, nil).Times(1)
	api.EXPECT().ListFiles(gomock.Any(), purchase).Return(files, nil).Times(1)

	dl := ocmocks.NewMockDownloader(ctrl)
	dl.EXPECT().FetchBatch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, records []model.FileRecord, _ string, _ download.Options) model.Summary {
			// Old file dropped, files without a parseable timestamp kept.
			if len(records) != 2 {
				t.Fatalf("expected 2 records, got %d", len(records))
			}
			for _, r := range records {
				if r.UUIDFilename == "old.zip" {
					t.Fatal("stale file should have been filtered")
				}
			}
			return model.Summary{Downloaded: 2}
		},
	).Times(1)

	orch := &Orchestrator{Client: api, DL: dl}

	summary, err := orch.Run(context.Background(), Options{OutputDir: t.TempDir(), Days: 30})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Downloaded != 2 {
		t.Fatalf("expected 2 downloaded, got %d", summary.Downloaded)
	}
}

func TestRun_ExtractionOnDownloadedArchives(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	group := model.Container{ID: 3, Name: "eodLevel2", Kind: model.KindGroup}
	record := model.FileRecord{UUIDFilename: "abc", DisplayName: "L2_20260115.zip"}

	outDir := t.TempDir()
	archivePath := filepath.Join(outDir, "Groups", "3 - eodLevel2", "L2_20260115.zip")

	api := ocmocks.NewMockVaultAPI(ctrl)
	api.EXPECT().ListPurchases(gomock.Any()).Return(nil, nil).Times(1)
	api.EXPECT().ListGroups(gomock.Any()).Return([]model.Container{group}, nil).Times(1)
	api.EXPECT().ListFiles(gomock.Any(), group).Return([]model.FileRecord{record}, nil).Times(1)

	dl := ocmocks.NewMockDownloader(ctrl)
	dl.EXPECT().FetchBatch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, records []model.FileRecord, _ string, opts download.Options) model.Summary {
			opts.OnResult(records[0], download.Result{Outcome: model.OutcomeDownloaded, Path: archivePath})
			return model.Summary{Downloaded: 1}
		},
	).Times(1)

	ext := ocmocks.NewMockExtractor(ctrl)
	ext.EXPECT().IsArchive(archivePath).Return(true).Times(1)
	ext.EXPECT().ExtractAll(gomock.Any(), archivePath, filepath.Join(outDir, "Groups", "3 - eodLevel2", "L2_20260115")).
		Return(nil).Times(1)

	orch := &Orchestrator{Client: api, DL: dl, Extractor: ext}

	_, err := orch.Run(context.Background(), Options{OutputDir: outDir, Extract: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestRun_MissingCollaborators(t *testing.T) {
	orch := &Orchestrator{}
	if _, err := orch.Run(context.Background(), Options{}); err == nil {
		t.Fatal("expected error with no client configured")
	}
}
