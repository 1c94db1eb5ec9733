// Package schema defines the shared data model that flows between the
// model-facing packages: messages, documents, tool calls, streaming
// events, and session state.
package schema

// ContentType identifies the concrete kind behind a ContentPart.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
	ContentAudio ContentType = "audio"
	ContentVideo ContentType = "video"
	ContentFile  ContentType = "file"
)

// ContentPart is one piece of a multi-modal message or tool result. A
// message's Parts slice can mix any combination of the concrete types
// below.
type ContentPart interface {
	PartType() ContentType
}

// TextPart is plain text content.
type TextPart struct {
	Text string
}

func (TextPart) PartType() ContentType { return ContentText }

// ImagePart carries image content either inline (Data) or by reference
// (URL).
type ImagePart struct {
	Data     []byte
	MimeType string
	URL      string
}

func (ImagePart) PartType() ContentType { return ContentImage }

// AudioPart carries audio content inline.
type AudioPart struct {
	Data       []byte
	Format     string
	SampleRate int
}

func (AudioPart) PartType() ContentType { return ContentAudio }

// VideoPart carries video content either inline (Data) or by reference
// (URL).
type VideoPart struct {
	Data     []byte
	MimeType string
	URL      string
}

func (VideoPart) PartType() ContentType { return ContentVideo }

// FilePart carries an arbitrary file attachment.
type FilePart struct {
	Data     []byte
	Name     string
	MimeType string
}

func (FilePart) PartType() ContentType { return ContentFile }
