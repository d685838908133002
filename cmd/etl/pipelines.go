package main

import (
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/movies-etl/internal/backoff"
	"github.com/DjordjeVuckovic/movies-etl/internal/config"
	"github.com/DjordjeVuckovic/movies-etl/internal/domain"
	"github.com/DjordjeVuckovic/movies-etl/internal/etl"
	"github.com/DjordjeVuckovic/movies-etl/internal/state"
	"github.com/DjordjeVuckovic/movies-etl/internal/storage/es"
	"github.com/DjordjeVuckovic/movies-etl/internal/storage/pg"
	"github.com/DjordjeVuckovic/movies-etl/internal/transform"
)

// deps are the shared resources every pipeline is wired to.
type deps struct {
	pool      *pg.ConnectionPool
	es        *es.Client
	storage   state.Storage
	startDate time.Time
}

// buildPipelines wires one pipeline per enabled entry and returns the index
// specs their loaders write to.
func buildPipelines(pipelines []config.Pipeline, d deps) ([]etl.Pumper, []es.IndexSpec, error) {
	pumpers := make([]etl.Pumper, 0, len(pipelines))
	specs := make([]es.IndexSpec, 0, len(pipelines))

	for _, p := range pipelines {
		cfg := etl.PipelineConfig{
			Name:             p.Name,
			ExtractBatchSize: p.ExtractorBatchSize,
			LoadBatchSize:    p.LoaderBatchSize,
			StartDate:        d.startDate,
			ExtractBackoff:   backoff.NewPolicy(p.Backoff.Extract),
			EnrichBackoff:    backoff.NewPolicy(p.Backoff.Enrich),
			LoadBackoff:      backoff.NewPolicy(p.Backoff.Load),
		}
		st := state.New(d.storage).WithPrefix(p.StatePrefix)

		switch p.Kind {
		case config.KindMovies:
			pumpers = append(pumpers, etl.NewPipeline[domain.MovieRow, domain.Movie](
				cfg,
				pg.NewMovieExtractor(d.pool),
				transform.NewMovieTransformer(),
				es.NewLoader[domain.Movie](d.es, p.Index),
				st,
			))
			specs = append(specs, es.MoviesIndex(p.Index))
		case config.KindGenres:
			pumpers = append(pumpers, etl.NewPipeline[domain.GenreRow, domain.Genre](
				cfg,
				pg.NewGenreExtractor(d.pool),
				transform.NewGenreTransformer(),
				es.NewLoader[domain.Genre](d.es, p.Index),
				st,
			))
			specs = append(specs, es.GenresIndex(p.Index))
		case config.KindPersons:
			pumpers = append(pumpers, etl.NewPipeline[domain.PersonRow, domain.Person](
				cfg,
				pg.NewPersonExtractor(d.pool),
				transform.NewPersonTransformer(),
				es.NewLoader[domain.Person](d.es, p.Index),
				st,
			))
			specs = append(specs, es.PersonsIndex(p.Index))
		default:
			return nil, nil, fmt.Errorf("pipeline %s: unknown kind %q", p.Name, p.Kind)
		}
	}

	return pumpers, specs, nil
}
