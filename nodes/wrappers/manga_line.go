package wrappers

import (
	"github.com/rowanvale/auxpack/registry"
	"github.com/rowanvale/auxpack/schema"
)

func mangaLineSource() (*registry.Mappings, error) {
	b, err := backend("Manga2Anime_LineArt_Preprocessor")
	if err != nil {
		return nil, err
	}
	class := modelClass(b, modelSpec{
		detector: "manga_line",
		category: categoryLines,
		inputs: func() *schema.Table {
			return schema.PreprocessorInputs(resolutionField())
		},
	})
	return registry.NewMappings().
		Register("Manga2Anime_LineArt_Preprocessor", class).
		Display("Manga2Anime_LineArt_Preprocessor", "Manga Lineart (aka lineart_anime_denoise)"), nil
}
