package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ryrobes/rewindex/internal/apperrors"
	"github.com/ryrobes/rewindex/internal/core"
	"github.com/ryrobes/rewindex/internal/query"
)

// serveRequest is the request body for POST /search, mirroring the
// query/filters/options shape the query engine itself exposes.
type serveRequest struct {
	Query   string        `json:"query"`
	Filters query.Filters `json:"filters"`
	Options query.Options `json:"options"`
}

func newServeCmd() *cobra.Command {
	var host string
	var port int

	c := &cobra.Command{
		Use:   "serve",
		Short: "Run a local HTTP API over the indexed project",
		Long: `Exposes /health, /status, and POST /search as a small JSON API for
editor integrations and other local tooling. The server is a thin
collaborator: all decisions are made by the core project, not here.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := openProject()
			if err != nil {
				return err
			}
			defer proj.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mux := http.NewServeMux()
			mux.HandleFunc("/health", handleHealth)
			mux.HandleFunc("/status", handleStatus(proj))
			mux.HandleFunc("/search", handleSearch(proj))

			addr := fmt.Sprintf("%s:%d", host, port)
			srv := &http.Server{Addr: addr, Handler: mux}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			fmt.Fprintf(cmd.OutOrStdout(), "serving %s (press ctrl-c to stop)\n", addr)
			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			case err := <-errCh:
				if err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			}
		},
	}

	c.Flags().StringVar(&host, "host", "127.0.0.1", "bind host")
	c.Flags().IntVar(&port, "port", 8899, "bind port")
	return c
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func handleStatus(proj *core.Project) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := proj.Status(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"project_id":      proj.ProjectID(),
			"project_root":    proj.Root(),
			"reachable":       st.BackendReachable,
			"files":           st.FilesCount,
			"versions":        st.VersionsCount,
			"watcher_running": st.WatcherRunning,
			"watcher_state":   string(st.WatcherState),
		})
	}
}

func handleSearch(proj *core.Project) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST required"})
			return
		}
		var req serveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if req.Options.Limit == 0 {
			req.Options = query.DefaultOptions()
		}
		resp, err := proj.Search(r.Context(), req.Query, req.Filters, req.Options)
		if err != nil {
			writeJSON(w, httpStatusFor(err), map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// httpStatusFor maps an apperrors.Kind to the HTTP status the /search
// endpoint reports, mirroring exitCodeFor's kind-to-exit-code table.
func httpStatusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindInvalidArgument, apperrors.KindParseError:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusForbidden
	case apperrors.KindBackendUnreachable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
