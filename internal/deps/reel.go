package deps

import "moviepicker/internal/config"

// ReelRequirements lists the external tools a reel run shells out to.
func ReelRequirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	return []Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Reel.YtDlpBinary,
			Description: "Required to download reels",
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.Reel.FFmpegBinary,
			Description: "Required for audio and frame extraction",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Reel.FFprobeBinary,
			Description: "Required to measure video duration",
		},
	}
}

// CheckReel evaluates ReelRequirements.
func CheckReel(cfg *config.Config) []Status {
	return CheckBinaries(ReelRequirements(cfg))
}
