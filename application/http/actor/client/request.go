package client

import (
	"strconv"

	"rawhttp/application/http"
	"rawhttp/application/http/semantic"
)

// BuildRequest serializes a request the way it goes on the wire.
//
// The request line is followed by Host and "Connection: close",
// then Content-Length when body is not nil, then headers in the given order.
// Nothing is validated: names are case-sensitive and duplicates are kept.
func BuildRequest(method semantic.Method, host, path string, headers []http.Field, body *string) []byte {
	return buildRequest(method, host, path, headers, body, http.DefaultEncodeOptions)
}

func buildRequest(
	method semantic.Method, host, path string,
	headers []http.Field, body *string,
	opts http.EncodeOptions,
) []byte {
	fields := make([]http.Field, 0, len(headers)+3)
	fields = append(fields,
		http.NewField("Host", host),
		http.NewField("Connection", "close"),
	)

	if body != nil {
		fields = append(fields, http.NewField("Content-Length", strconv.Itoa(len(*body))))
	}
	fields = append(fields, headers...)

	enc := http.NewRequestEncoder(nil, opts)
	b := enc.AppendHead(nil, http.Request{
		RequestLine: http.RequestLine{
			Method:  string(method),
			Target:  path,
			Version: http.Version11,
		},
		Headers: fields,
	})
	if body != nil {
		b = append(b, *body...)
	}

	return b
}
