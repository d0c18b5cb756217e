package download

import (
	"fmt"

	"github.com/ytget/yt-batch/internal/model"
)

// outputFileName joins the cleaned title, an optional suffix and the extension
func outputFileName(title, suffix string, format model.OutputFormat) string {
	if suffix != "" {
		title += "_" + suffix
	}
	return title + format.Ext()
}

func bitrateSuffix(kbps int) string {
	return fmt.Sprintf("%dkbps", kbps)
}
