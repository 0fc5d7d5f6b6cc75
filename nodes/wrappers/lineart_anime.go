package wrappers

import (
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func lineartAnimeSource() (*registry.Mappings, error) {
	b, err := backend("AnimeLineArtPreprocessor")
	if err != nil {
		return nil, err
	}
	class := modelClass(b, modelSpec{
		detector: "lineart_anime",
		category: categoryLines,
		inputs: func() *schema.Table {
			return schema.PreprocessorInputs(resolutionField())
		},
	})
	return registry.NewMappings().
		Register("AnimeLineArtPreprocessor", class).
		Display("AnimeLineArtPreprocessor", "Anime Lineart"), nil
}
