package es

import (
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/dynamicmapping"
)

const (
	textAnalyzer = "ru_en"
	dateFormat   = "yyyy-MM-dd"
)

// analysisSettings defines a lowercase analyzer dropping English and Russian stop words.
func analysisSettings() types.IndexSettings {
	return types.IndexSettings{
		Analysis: &types.IndexSettingsAnalysis{
			Filter: map[string]types.TokenFilter{
				"english_stop": types.StopTokenFilter{Stopwords: []string{"_english_"}},
				"russian_stop": types.StopTokenFilter{Stopwords: []string{"_russian_"}},
			},
			Analyzer: map[string]types.Analyzer{
				textAnalyzer: types.CustomAnalyzer{
					Tokenizer: "standard",
					Filter:    []string{"lowercase", "english_stop", "russian_stop"},
				},
			},
		},
	}
}

func MoviesIndex(name string) IndexSpec {
	return IndexSpec{
		Name:     name,
		Settings: analysisSettings(),
		Mappings: types.TypeMapping{
			Dynamic: &dynamicmapping.Strict,
			Properties: map[string]types.Property{
				"id":              types.NewKeywordProperty(),
				"title":           textWithKeyword(),
				"description":     text(),
				"imdb_rating":     types.NewFloatNumberProperty(),
				"type":            types.NewKeywordProperty(),
				"creation_date":   date(),
				"genres":          refs("name"),
				"genres_names":    types.NewKeywordProperty(),
				"actors":          refs("name"),
				"actors_names":    text(),
				"directors":       refs("name"),
				"directors_names": text(),
				"writers":         refs("name"),
				"writers_names":   text(),
			},
		},
	}
}

func GenresIndex(name string) IndexSpec {
	movies := types.NewNestedProperty()
	movies.Dynamic = &dynamicmapping.Strict
	movies.Properties = map[string]types.Property{
		"id":          types.NewKeywordProperty(),
		"title":       text(),
		"imdb_rating": types.NewFloatNumberProperty(),
	}

	return IndexSpec{
		Name:     name,
		Settings: analysisSettings(),
		Mappings: types.TypeMapping{
			Dynamic: &dynamicmapping.Strict,
			Properties: map[string]types.Property{
				"id":          types.NewKeywordProperty(),
				"name":        textWithKeyword(),
				"description": text(),
				"movies":      movies,
			},
		},
	}
}

func PersonsIndex(name string) IndexSpec {
	movies := types.NewNestedProperty()
	movies.Dynamic = &dynamicmapping.Strict
	movies.Properties = map[string]types.Property{
		"id":    types.NewKeywordProperty(),
		"title": text(),
		"roles": types.NewKeywordProperty(),
	}

	return IndexSpec{
		Name:     name,
		Settings: analysisSettings(),
		Mappings: types.TypeMapping{
			Dynamic: &dynamicmapping.Strict,
			Properties: map[string]types.Property{
				"id":        types.NewKeywordProperty(),
				"full_name": textWithKeyword(),
				"roles":     types.NewKeywordProperty(),
				"movies":    movies,
			},
		},
	}
}

func refs(textField string) types.Property {
	p := types.NewNestedProperty()
	p.Dynamic = &dynamicmapping.Strict
	p.Properties = map[string]types.Property{
		"id":      types.NewKeywordProperty(),
		textField: text(),
	}
	return p
}

func text() types.Property {
	p := types.NewTextProperty()
	analyzer := textAnalyzer
	p.Analyzer = &analyzer
	return p
}

func textWithKeyword() types.Property {
	p := types.NewTextProperty()
	analyzer := textAnalyzer
	p.Analyzer = &analyzer
	p.Fields = map[string]types.Property{
		"raw": types.NewKeywordProperty(),
	}
	return p
}

func date() types.Property {
	p := types.NewDateProperty()
	format := dateFormat
	p.Format = &format
	return p
}
