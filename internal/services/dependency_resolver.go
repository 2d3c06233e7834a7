package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/metrics-engine/internal/data/repos"
	types "github.com/yungbote/metrics-engine/internal/domain"
	"github.com/yungbote/metrics-engine/internal/domain/catalog"
	"github.com/yungbote/metrics-engine/internal/platform/dbctx"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

type DependencyResolverService interface {
	// FindMetricsForDataset returns the metrics whose required datasets
	// include datasetID. A missing dataset yields an empty result. Metrics
	// referencing unknown series are skipped, not fatal, so one broken
	// metric cannot block updates for the rest.
	FindMetricsForDataset(dbc dbctx.Context, datasetID uuid.UUID) ([]*types.Metric, error)
	// ResolveRequiredDatasets maps a metric's series codes to the distinct
	// datasets owning them. A missing metric yields an empty result; an
	// extracted code with no Series row is an integrity error.
	ResolveRequiredDatasets(dbc dbctx.Context, metricID uuid.UUID) ([]*types.Dataset, error)
}

type dependencyResolverService struct {
	db          *gorm.DB
	log         *logger.Logger
	metricRepo  repos.MetricRepo
	seriesRepo  repos.SeriesRepo
	datasetRepo repos.DatasetRepo
}

func NewDependencyResolverService(
	db *gorm.DB,
	baseLog *logger.Logger,
	metricRepo repos.MetricRepo,
	seriesRepo repos.SeriesRepo,
	datasetRepo repos.DatasetRepo,
) DependencyResolverService {
	return &dependencyResolverService{
		db:          db,
		log:         baseLog.With("service", "DependencyResolverService"),
		metricRepo:  metricRepo,
		seriesRepo:  seriesRepo,
		datasetRepo: datasetRepo,
	}
}

func (s *dependencyResolverService) FindMetricsForDataset(dbc dbctx.Context, datasetID uuid.UUID) ([]*types.Metric, error) {
	dataset, err := s.datasetRepo.GetByID(dbc, datasetID)
	if err != nil {
		return nil, err
	}
	if dataset == nil {
		s.log.Warn("dataset not found, no dependent metrics", "dataset_id", datasetID)
		return []*types.Metric{}, nil
	}

	metrics, err := s.metricRepo.List(dbc)
	if err != nil {
		return nil, err
	}

	dependents := make([]*types.Metric, 0, len(metrics))
	for _, metric := range metrics {
		required, err := s.resolveForMetric(dbc, metric)
		if err != nil {
			var notFound *catalog.SeriesNotFoundError
			if errors.As(err, &notFound) {
				s.log.Warn("skipping metric with unresolvable series",
					"metric_code", metric.Code, "error", err.Error())
				continue
			}
			return nil, err
		}
		for _, d := range required {
			if d.ID == datasetID {
				dependents = append(dependents, metric)
				break
			}
		}
	}
	return dependents, nil
}

func (s *dependencyResolverService) ResolveRequiredDatasets(dbc dbctx.Context, metricID uuid.UUID) ([]*types.Dataset, error) {
	metric, err := s.metricRepo.GetByID(dbc, metricID)
	if err != nil {
		return nil, err
	}
	if metric == nil {
		return []*types.Dataset{}, nil
	}
	return s.resolveForMetric(dbc, metric)
}

func (s *dependencyResolverService) resolveForMetric(dbc dbctx.Context, metric *types.Metric) ([]*types.Dataset, error) {
	codes, err := catalog.ExtractSeriesCodes(metric)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return []*types.Dataset{}, nil
	}

	series, err := s.seriesRepo.GetByCodes(dbc, codes)
	if err != nil {
		return nil, err
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
		return nil, &catalog.SeriesNotFoundError{Codes: missing}
	}

	return s.datasetRepo.GetBySeriesCodes(dbc, codes)
}
