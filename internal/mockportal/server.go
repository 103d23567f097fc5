// Package mockportal serves a synthetic copy of the portal stats API for
// local development and load testing. It speaks the same leaderboard and
// pp-totals payloads as the real upstream, with tunable latency and error
// injection.
package mockportal

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// Server holds the generated population and serves it over HTTP.
type Server struct {
	cfg     *Config
	wallets []Wallet
	byAddr  map[string]Wallet
}

// NewServer generates a population of cfg.Wallets accounts.
func NewServer(cfg *Config) *Server {
	wallets := GeneratePopulation(cfg.Wallets)
	byAddr := make(map[string]Wallet, len(wallets))
	for _, w := range wallets {
		byAddr[w.Address] = w
	}
	return &Server{
		cfg:     cfg,
		wallets: wallets,
		byAddr:  byAddr,
	}
}

// Run serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("mock portal listening on %s with %d wallets", s.cfg.Addr, len(s.wallets))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("mock portal shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("mock portal serve: %w", err)
		}
		return nil
	}
}

// Handler exposes the routed mux for in-process tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/stats/leaderboard", s.withFaults(s.handleLeaderboard))
	mux.HandleFunc("/api/v1/stats/pp-totals", s.withFaults(s.handleTotals))
	return mux
}

// withFaults applies the configured latency and error injection.
func (s *Server) withFaults(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Verbose {
			log.Printf("%s %s", r.Method, r.URL.String())
		}
		if s.cfg.Latency > 0 {
			time.Sleep(s.cfg.Latency)
		}
		if s.cfg.ErrorRate > 0 && getRandomFloat() < s.cfg.ErrorRate {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		next.ServeHTTP(w, r)
	}
}

type leaderboardPayload struct {
	Data struct {
		Leaderboard []leaderboardEntry `json:"leaderboard"`
	} `json:"data"`
}

type leaderboardEntry struct {
	WalletAddress string `json:"walletAddress"`
	TotalXP       int64  `json:"totalXp"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))
	if offset < 0 || count < 1 {
		http.Error(w, "bad offset/count", http.StatusBadRequest)
		return
	}

	var payload leaderboardPayload
	payload.Data.Leaderboard = []leaderboardEntry{}
	for i := offset; i < offset+count && i < len(s.wallets); i++ {
		payload.Data.Leaderboard = append(payload.Data.Leaderboard, leaderboardEntry{
			WalletAddress: s.wallets[i].Address,
			TotalXP:       s.wallets[i].ActiveXP,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

type totalsPayload struct {
	Data struct {
		PPScores struct {
			ActiveXP xpTotal `json:"activeXp"`
			PrevXP   xpTotal `json:"prevXp"`
		} `json:"ppScores"`
	} `json:"data"`
}

type xpTotal struct {
	TotalXP int64 `json:"totalXp"`
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	addr := r.URL.Query().Get("walletAddress")
	wallet, ok := s.byAddr[addr]
	if !ok {
		http.Error(w, "unknown wallet", http.StatusNotFound)
		return
	}

	var payload totalsPayload
	payload.Data.PPScores.ActiveXP = xpTotal{TotalXP: wallet.ActiveXP}
	payload.Data.PPScores.PrevXP = xpTotal{TotalXP: wallet.PrevXP}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
