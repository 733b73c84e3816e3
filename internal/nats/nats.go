package nats

import (
	"os"

	"github.com/nats-io/nats.go"
)

type Nats struct {
	Url   string
	Token string
	Conn  *nats.Conn
}

// Connect dials url, falling back to NATS_URL and then the local default.
// NATS_TOKEN is used when set.
func Connect(url, name string) (*Nats, error) {
	n := &Nats{
		Url:   url,
		Token: os.Getenv("NATS_TOKEN"),
	}

	if n.Url == "" {
		n.Url = os.Getenv("NATS_URL")
	}
	if n.Url == "" {
		n.Url = nats.DefaultURL
	}

	opts := []nats.Option{
		nats.Name(name),
	}

	// if token provided
	if n.Token != "" {
		opts = append(opts, nats.Token(n.Token))
	}

	conn, err := nats.Connect(n.Url, opts...)
	if err != nil {
		return nil, err
	}

	n.Conn = conn

	return n, nil
}
