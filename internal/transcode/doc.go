// Package transcode drives the external ffmpeg binary. A Recipe lists the
// inputs (files or one stdin stream), the codec and mapping directives and
// the output path; Service.Run executes it and reports exactly one result.
package transcode
