package clix

import (
	"strings"

	"github.com/spf13/pflag"

	"tubeconv/internal/models"
)

// AddConvertFlags registers the flags read by ParseConvertRequest.
func AddConvertFlags(flags *pflag.FlagSet) {
	flags.StringP("format", "f", string(models.FormatMP4), "Output format: mp4 (video) or mp3 (audio)")
	flags.StringP("quality", "q", models.QualityBest, "Quality: best, 1080p, 720p, 480p, 360p for mp4; best, 256, 192, 128 for mp3")
	flags.StringP("output", "o", "", "Directory to save the file in (defaults to retrieval.download_dir)")
}

// ParseConvertRequest builds a request from the URL argument and the flags.
// Values are normalized but not validated.
func ParseConvertRequest(flags *pflag.FlagSet, rawURL string) models.ConvertRequest {
	format, _ := flags.GetString("format")
	quality, _ := flags.GetString("quality")

	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = string(models.FormatMP4)
	}
	quality = strings.ToLower(strings.TrimSpace(quality))
	if quality == "" {
		quality = models.QualityBest
	}
	// "192k" and "720" are accepted as shorthands
	quality = strings.TrimSuffix(quality, "k")
	if models.Format(format) == models.FormatMP4 && quality != models.QualityBest && !strings.HasSuffix(quality, "p") {
		quality += "p"
	}

	return models.ConvertRequest{
		SourceURL: strings.TrimSpace(rawURL),
		Format:    models.Format(format),
		Quality:   quality,
	}
}

// ParseOutputDir returns the --output flag, or fallback when it is empty.
func ParseOutputDir(flags *pflag.FlagSet, fallback string) string {
	out, _ := flags.GetString("output")
	out = strings.TrimSpace(out)
	if out == "" {
		return fallback
	}
	return out
}
