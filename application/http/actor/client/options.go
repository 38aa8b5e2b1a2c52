package client

import (
	"time"

	"rawhttp/application/http"
)

type Options struct {
	// Port used for every request. HTTP default is 80.
	Port uint16

	Send    SendOptions
	Receive ReceiveOptions
	Timeout TimeoutOptions
}

type SendOptions struct {
	Encode http.EncodeOptions
}

type ReceiveOptions struct {
	Decode http.DecodeOptions

	// MaxBodySize caps the body of a response. 0 means unlimited.
	MaxBodySize uint
}

type TimeoutOptions struct {
	// Dial bounds establishing the connection.
	Dial time.Duration
	// Write bounds sending the whole request.
	Write time.Duration
	// Read bounds the whole read phase, from the first byte to the end of body.
	Read time.Duration
}

var DefaultOptions = Options{
	Port: 80,
	Send: SendOptions{
		Encode: http.DefaultEncodeOptions,
	},
	Receive: ReceiveOptions{
		Decode: http.DecodeOptions{
			MaxFieldLineLength:  64 * 1024,
			MaxStatusLineLength: 8 * 1024,
		},
		MaxBodySize: 0,
	},
	Timeout: TimeoutOptions{
		Dial:  10 * time.Second,
		Write: 30 * time.Second,
		Read:  30 * time.Second,
	},
}
