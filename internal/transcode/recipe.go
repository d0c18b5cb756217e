package transcode

import (
	"io"
	"strconv"
)

// Codec and container constants
const (
	AudioCodecMP3 = "libmp3lame"
	AudioCodecAAC = "aac"
	CopyCodec     = "copy"
	ID3Version    = "3"
	ContainerMP3  = "mp3"
	ContainerMP4  = "mp4"
)

// Input is one ffmpeg input: a file path or a reader piped to stdin
type Input struct {
	Path   string
	Reader io.Reader
}

// FileInput returns an input read from a file
func FileInput(path string) Input {
	return Input{Path: path}
}

// PipeInput returns an input streamed through stdin
func PipeInput(r io.Reader) Input {
	return Input{Reader: r}
}

// Metadata holds the tags written into audio files
type Metadata struct {
	Title  string
	Artist string
}

// Recipe describes one ffmpeg invocation
type Recipe struct {
	Inputs     []Input
	Args       []string // mapping, codec and tag directives
	OutputPath string
}

// EncodeAudio re-encodes the first input to mp3 at kbps. When artPath is set
// the image is attached as a second stream. meta is written when non-nil.
func EncodeAudio(in Input, outputPath string, kbps int, artPath string, meta *Metadata) Recipe {
	r := Recipe{Inputs: []Input{in}, OutputPath: outputPath}

	if artPath != "" {
		r.Inputs = append(r.Inputs, FileInput(artPath))
		// Audio from the source, cover image from the second input
		r.Args = append(r.Args, "-map", "0:0", "-map", "1:0")
	} else {
		r.Args = append(r.Args, "-vn")
	}

	r.Args = append(r.Args,
		"-c:a", AudioCodecMP3,
		"-b:a", strconv.Itoa(kbps)+"k",
		"-id3v2_version", ID3Version,
	)

	if meta != nil {
		r.Args = append(r.Args,
			"-metadata", "title="+meta.Title,
			"-metadata", "artist="+meta.Artist,
		)
	}

	r.Args = append(r.Args, "-f", ContainerMP3)
	return r
}

// CopyVideo saves the video track of in without re-encoding and drops audio
func CopyVideo(in Input, outputPath string) Recipe {
	return Recipe{
		Inputs:     []Input{in},
		Args:       []string{"-c:v", CopyCodec, "-an", "-f", ContainerMP4},
		OutputPath: outputPath,
	}
}

// Mux combines a video file and an audio file into one mp4, copying video
// and encoding audio to aac.
func Mux(videoPath, audioPath, outputPath string) Recipe {
	return Recipe{
		Inputs: []Input{FileInput(videoPath), FileInput(audioPath)},
		Args: []string{
			"-map", "0:v:0",
			"-map", "1:a:0",
			"-c:v", CopyCodec,
			"-c:a", AudioCodecAAC,
			"-f", ContainerMP4,
		},
		OutputPath: outputPath,
	}
}
