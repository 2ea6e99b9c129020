package assembly

import (
	"os"
	"path/filepath"

	"paperweights/internal/config"
	"paperweights/internal/digest"
	"paperweights/internal/episode"
	"paperweights/internal/fileutil"
	"paperweights/internal/media/mp3info"
	"paperweights/internal/script"
	"paperweights/internal/store"
)

// Describer returns a store.DescribeFunc that derives ledger display
// metadata for artifacts discovered on disk, mirroring what a full assembly
// run would have recorded: the script's lead topic for the title and the
// digest-driven paper lists for the description. A missing or unparseable
// script degrades to the generic title rather than an empty row.
func Describer(cfg *config.Config) store.DescribeFunc {
	return func(date, audioPath string) (string, string) {
		return describe(cfg, date, audioPath)
	}
}

func describe(cfg *config.Config, date, audioPath string) (string, string) {
	var doc script.Document
	if path, ok := store.BestScriptFile(cfg.Paths.EpisodesDir, date); ok {
		if content, err := os.ReadFile(path); err == nil {
			parser := script.NewParser(speakerNames(cfg.Synthesis.Hosts))
			if parsed, err := parser.Parse(date, string(content)); err == nil {
				doc = parsed
			}
		}
	}

	dg, err := digest.Load(cfg.Paths.DigestDir, date)
	if err != nil {
		dg = digest.Digest{}
	}

	var durationSeconds float64
	if d, err := mp3info.Duration(audioPath); err == nil {
		durationSeconds = d
	}
	var sizeBytes int64
	if size, err := fileutil.FileSize(audioPath); err == nil {
		sizeBytes = size
	}

	meta := episode.Build(episode.Input{
		Date:            date,
		Document:        doc,
		Digest:          dg,
		DurationSeconds: durationSeconds,
		SizeBytes:       sizeBytes,
		AudioFile:       filepath.Base(audioPath),
		MaxListedPapers: cfg.Feed.MaxListedPapers,
	})
	return meta.Title, meta.Description
}
