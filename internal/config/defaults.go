package config

const (
	defaultEpisodesDir      = "~/paperweights/episodes"
	defaultDigestDir        = "~/paperweights/digests"
	defaultStagingDir       = "~/.local/share/paperweights/staging"
	defaultLogDir           = "~/.local/share/paperweights/logs"
	defaultModelID          = "eleven_v3"
	defaultMaxChunkChars    = 2500
	defaultMaxRetries       = 2
	defaultMaxFailures      = 0
	defaultSynthTimeoutSecs = 120
	defaultSilenceGapMs     = 400
	defaultDriftToleranceMs = 50
	defaultAssetsTag        = "assets"
	defaultFeedAssetName    = "feed.xml"
	defaultFeedTitle        = "Paper Weights: Daily AI Research Briefing"
	defaultFeedAuthor       = "Paper Weights"
	defaultFeedEmail        = "podcast@paperweights.ai"
	defaultFeedCategory     = "Technology"
	defaultFeedLanguage     = "en"
	defaultFeedExplicit     = "no"
	defaultFeedPublishTime  = "09:00:00 -0600"
	defaultMaxListedPapers  = 12
	defaultNtfyTimeoutSecs  = 10
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			EpisodesDir: defaultEpisodesDir,
			DigestDir:   defaultDigestDir,
			StagingDir:  defaultStagingDir,
			LogDir:      defaultLogDir,
		},
		Synthesis: Synthesis{
			Hosts: map[string]string{
				"Alex": "iP95p4xoKVk53GoZ742B",
				"Maya": "FGY2WhTYpPnrIDTdsKH5",
			},
			ModelID:        defaultModelID,
			MaxChunkChars:  defaultMaxChunkChars,
			MaxRetries:     defaultMaxRetries,
			MaxFailures:    defaultMaxFailures,
			TimeoutSeconds: defaultSynthTimeoutSecs,
		},
		Assembly: Assembly{
			SilenceGapMs:     defaultSilenceGapMs,
			DriftToleranceMs: defaultDriftToleranceMs,
		},
		Publish: Publish{
			AssetsTag:     defaultAssetsTag,
			FeedAssetName: defaultFeedAssetName,
		},
		Feed: Feed{
			Title:           defaultFeedTitle,
			Description:     "Every morning, two hosts break down the AI papers that actually matter — one explains the science, one asks where the money is.",
			Author:          defaultFeedAuthor,
			Email:           defaultFeedEmail,
			Category:        defaultFeedCategory,
			Language:        defaultFeedLanguage,
			Explicit:        defaultFeedExplicit,
			PublishTime:     defaultFeedPublishTime,
			MaxListedPapers: defaultMaxListedPapers,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeoutSecs,
			Publishes:      true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
