package publishers

import (
	"context"
	"fmt"
)

// BuildAll instantiates a publisher per config entry. There are exactly two
// publisher types, so construction is a direct dispatch; an unknown type is a
// config error surfaced here rather than at publish time.
func BuildAll(ctx context.Context, cfgs []PublisherConfig, log Logger) ([]Publisher, error) {
	if len(cfgs) == 0 {
		return nil, nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	log = ensureLogger(log)

	pubs := make([]Publisher, 0, len(cfgs))
	for _, cfg := range cfgs {
		var (
			pub Publisher
			err error
		)
		switch cfg.Type {
		case TypeHTTP:
			pub, err = newHTTPPublisher(ctx, cfg, log)
		case TypeQueue:
			pub, err = newQueuePublisher(ctx, cfg, log)
		default:
			err = fmt.Errorf("publisher %q has unsupported type %q", cfg.ID, cfg.Type)
		}
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, pub)
	}
	return pubs, nil
}
