package utils

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// Standard progress bar descriptions
const (
	DescFetching = "Fetching"
	DescParsing  = "Parsing"
)

// NewProgressBar creates a consistently styled progress bar.
//
// Use total -1 for unknown totals; the bar then renders as a spinner.
// A nil output writes to stderr, io.Discard silences the bar.
//
//	bar := utils.NewProgressBar(len(shas), utils.DescFetching, nil)
//	defer bar.Finish()
func NewProgressBar(total int, description string, output io.Writer) *progressbar.ProgressBar {
	opts := []progressbar.Option{
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
	}
	if output != nil {
		opts = append(opts, progressbar.OptionSetWriter(output))
	}

	if total < 0 {
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetRenderBlankState(true),
		)
	} else {
		opts = append(opts,
			progressbar.OptionShowIts(),
		)
	}

	return progressbar.NewOptions(total, opts...)
}
