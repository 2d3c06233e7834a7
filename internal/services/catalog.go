package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/metrics-engine/internal/data/db"
	"github.com/yungbote/metrics-engine/internal/data/repos"
	types "github.com/yungbote/metrics-engine/internal/domain"
	"github.com/yungbote/metrics-engine/internal/domain/catalog"
	"github.com/yungbote/metrics-engine/internal/platform/dbctx"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

type CatalogService interface {
	CreateSeries(ctx context.Context, series *types.Series) (*types.Series, error)
	// CreateDataset stores the dataset and its series memberships in one
	// transaction; a failed membership link rolls the dataset back too.
	CreateDataset(ctx context.Context, dataset *types.Dataset, seriesCodes []string) (*types.Dataset, error)
	// CreateMetric validates the expression tree and requires every
	// referenced series to exist before the metric is stored.
	CreateMetric(ctx context.Context, metric *types.Metric) (*types.Metric, error)
	ListMetrics(ctx context.Context) ([]*types.Metric, error)
	ListDatasets(ctx context.Context) ([]*types.Dataset, error)
	ListSeries(ctx context.Context) ([]*types.Series, error)
}

type catalogService struct {
	db          *gorm.DB
	log         *logger.Logger
	txRunner    db.TxRunner
	metricRepo  repos.MetricRepo
	seriesRepo  repos.SeriesRepo
	datasetRepo repos.DatasetRepo
}

func NewCatalogService(
	gdb *gorm.DB,
	baseLog *logger.Logger,
	txRunner db.TxRunner,
	metricRepo repos.MetricRepo,
	seriesRepo repos.SeriesRepo,
	datasetRepo repos.DatasetRepo,
) CatalogService {
	return &catalogService{
		db:          gdb,
		log:         baseLog.With("service", "CatalogService"),
		txRunner:    txRunner,
		metricRepo:  metricRepo,
		seriesRepo:  seriesRepo,
		datasetRepo: datasetRepo,
	}
}

func (s *catalogService) CreateSeries(ctx context.Context, series *types.Series) (*types.Series, error) {
	if series.Code == "" {
		return nil, &catalog.ValidationError{Field: "code", Message: "is required"}
	}
	if series.ID == uuid.Nil {
		series.ID = uuid.New()
	}
	err := s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		_, txErr := s.seriesRepo.Create(dbc, series)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return series, nil
}

func (s *catalogService) CreateDataset(ctx context.Context, dataset *types.Dataset, seriesCodes []string) (*types.Dataset, error) {
	if dataset.Name == "" {
		return nil, &catalog.ValidationError{Field: "name", Message: "is required"}
	}
	if dataset.ID == uuid.Nil {
		dataset.ID = uuid.New()
	}

	err := s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		series, err := s.seriesRepo.GetByCodes(dbc, seriesCodes)
		if err != nil {
			return err
		}
		if len(series) != len(seriesCodes) {
			found := make(map[string]bool, len(series))
			for _, sr := range series {
				found[sr.Code] = true
			}
			var missing []string
			for _, code := range seriesCodes {
				if !found[code] {
					missing = append(missing, code)
				}
			}
			return &catalog.SeriesNotFoundError{Codes: missing}
		}

		if _, err := s.datasetRepo.Create(dbc, dataset); err != nil {
			return err
		}
		for _, sr := range series {
			if err := s.datasetRepo.AddSeries(dbc, dataset.ID, sr.ID); err != nil {
				return err
			}
		}
		s.log.Info("created dataset", "dataset_id", dataset.ID, "series", len(series))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dataset, nil
}

func (s *catalogService) CreateMetric(ctx context.Context, metric *types.Metric) (*types.Metric, error) {
	if err := catalog.ValidateMetric(metric); err != nil {
		return nil, err
	}

	err := s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		existing, err := s.metricRepo.GetByCode(dbc, metric.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("metric code %q already exists", metric.Code)
		}

		codes, err := catalog.ExtractSeriesCodes(metric)
		if err != nil {
			return err
		}
		series, err := s.seriesRepo.GetByCodes(dbc, codes)
		if err != nil {
			return err
		}
		found := make(map[string]bool, len(series))
		for _, sr := range series {
			found[sr.Code] = true
		}
		var missing []string
		for _, code := range codes {
			if !found[code] {
				missing = append(missing, code)
			}
		}
		if len(missing) > 0 {
			return &catalog.SeriesNotFoundError{Codes: missing}
		}

		if metric.ID == uuid.Nil {
			metric.ID = uuid.New()
		}
		if _, err := s.metricRepo.Create(dbc, metric); err != nil {
			return err
		}
		s.log.Info("created metric", "metric_code", metric.Code, "series", len(codes))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return metric, nil
}

func (s *catalogService) ListMetrics(ctx context.Context) ([]*types.Metric, error) {
	return s.metricRepo.List(dbctx.Context{Ctx: ctx})
}

func (s *catalogService) ListDatasets(ctx context.Context) ([]*types.Dataset, error) {
	return s.datasetRepo.List(dbctx.Context{Ctx: ctx})
}

func (s *catalogService) ListSeries(ctx context.Context) ([]*types.Series, error) {
	return s.seriesRepo.List(dbctx.Context{Ctx: ctx})
}
