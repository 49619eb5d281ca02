package registry

// Content-Format codes, RFC 7252 §12.3 plus RFC 6690 link-format.
const (
	ContentFormatTextPlain   uint32 = 0
	ContentFormatLinkFormat  uint32 = 40
	ContentFormatJSON        uint32 = 50
	ContentFormatCBOR        uint32 = 60
)

// ContentFormats is the default Content-Format registry.
var ContentFormats = newContentFormatRegistry()

func newContentFormatRegistry() *Registry {
	r := New(nil)
	r.MustRegister(ContentFormatTextPlain, "text/plain;charset=utf-8", "TextPlain", "RFC2046")
	r.MustRegister(ContentFormatLinkFormat, "application/link-format", "LinkFormat", "RFC6690")
	r.MustRegister(ContentFormatJSON, "application/json", "JSON", "RFC7159")
	r.MustRegister(ContentFormatCBOR, "application/cbor", "CBOR", "RFC7049")
	return r
}
