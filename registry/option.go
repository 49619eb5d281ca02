package registry

// Option numbers, RFC 7252 §12.2 and RFC 7641 §2 (Observe).
const (
	OptionIfMatch       uint32 = 1
	OptionURIHost       uint32 = 3
	OptionETag          uint32 = 4
	OptionIfNoneMatch   uint32 = 5
	OptionObserve       uint32 = 6
	OptionURIPort       uint32 = 7
	OptionLocationPath  uint32 = 8
	OptionURIPath       uint32 = 11
	OptionContentFormat uint32 = 12
	OptionMaxAge        uint32 = 14
	OptionURIQuery      uint32 = 15
	OptionAccept        uint32 = 17
	OptionLocationQuery uint32 = 20
	OptionProxyURI      uint32 = 35
	OptionProxyScheme   uint32 = 39
	OptionSize1         uint32 = 60
)

// Options is the default Option registry.
var Options = newOptionRegistry()

func newOptionRegistry() *Registry {
	r := New(nil)
	r.MustRegister(OptionIfMatch, "If-Match", "IfMatch", "RFC7252")
	r.MustRegister(OptionURIHost, "Uri-Host", "URIHost", "RFC7252")
	r.MustRegister(OptionETag, "ETag", "ETag", "RFC7252")
	r.MustRegister(OptionIfNoneMatch, "If-None-Match", "IfNoneMatch", "RFC7252")
	r.MustRegister(OptionObserve, "Observe", "Observe", "RFC7641")
	r.MustRegister(OptionURIPort, "Uri-Port", "URIPort", "RFC7252")
	r.MustRegister(OptionLocationPath, "Location-Path", "LocationPath", "RFC7252")
	r.MustRegister(OptionURIPath, "Uri-Path", "URIPath", "RFC7252")
	r.MustRegister(OptionContentFormat, "Content-Format", "ContentFormat", "RFC7252")
	r.MustRegister(OptionMaxAge, "Max-Age", "MaxAge", "RFC7252")
	r.MustRegister(OptionURIQuery, "Uri-Query", "URIQuery", "RFC7252")
	r.MustRegister(OptionAccept, "Accept", "Accept", "RFC7252")
	r.MustRegister(OptionLocationQuery, "Location-Query", "LocationQuery", "RFC7252")
	r.MustRegister(OptionProxyURI, "Proxy-Uri", "ProxyURI", "RFC7252")
	r.MustRegister(OptionProxyScheme, "Proxy-Scheme", "ProxyScheme", "RFC7252")
	r.MustRegister(OptionSize1, "Size1", "Size1", "RFC7252")
	return r
}

// Critical reports whether option number n is critical (bit 0 set),
// RFC 7252 §5.4.1: an unrecognized critical option must reject the
// message, an elective one may be ignored.
func Critical(n uint32) bool { return n&1 == 1 }

// Repeatable options that the wire model stores as ordered sequences even
// for a single occurrence.
func Repeatable(n uint32) bool {
	return n == OptionURIPath || n == OptionURIQuery || n == OptionLocationPath || n == OptionLocationQuery || n == OptionIfMatch || n == OptionETag
}
