package ingest

import (
	"mime"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decoderFor picks the text decoder for a declared media type. A charset
// parameter wins when it names a known encoding; anything else decodes as
// UTF-8. A leading byte order mark always overrides both and is stripped.
func decoderFor(mediaType string) transform.Transformer {
	fallback := unicode.UTF8.NewDecoder()
	if _, params, err := mime.ParseMediaType(mediaType); err == nil {
		if label := params["charset"]; label != "" {
			if enc, _ := charset.Lookup(label); enc != nil {
				fallback = enc.NewDecoder()
			}
		}
	}
	return unicode.BOMOverride(fallback)
}

// isPlainText reports whether the declared media type is text/plain.
func isPlainText(mediaType string) bool {
	if mediaType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return false
	}
	return mt == "text/plain"
}
