// Package metrics exposes the arl/statsviz live runtime dashboard, the
// same debug endpoint every teacher service binds next to its main
// listener (hall/main.go, player/main.go: "启动监控..., URL:
// http://localhost:<port>/debug/statsviz/").
package metrics

import (
	"net/http"

	"github.com/arl/statsviz"
)

// Serve blocks, serving the statsviz dashboard on addr until the
// listener errors. Callers run it in its own goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	if err := statsviz.Register(mux); err != nil {
		return err
	}
	return http.ListenAndServe(addr, mux)
}
