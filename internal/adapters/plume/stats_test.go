package plume_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/plumescan/plumescan/internal/adapters/plume"
	. "github.com/smartystreets/goconvey/convey"
)

// statsPortal serves a leaderboard of n wallets where wallet i scores n-i.
func statsPortal(n int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		count, _ := strconv.Atoi(r.URL.Query().Get("count"))
		var rows string
		for i := offset; i < offset+count && i < n; i++ {
			if rows != "" {
				rows += ","
			}
			rows += fmt.Sprintf(`{"walletAddress":"0x%04d","totalXp":%d}`, i, n-i)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"data":{"leaderboard":[%s]}}`, rows)
	})
}

func TestScanNetwork(t *testing.T) {
	Convey("Given a portal with 37 active wallets", t, func() {
		server := httptest.NewServer(statsPortal(37))
		defer server.Close()

		client := plume.NewClient(
			plume.WithLeaderboardURL(server.URL),
			plume.WithPageSize(10),
			plume.WithMaxRetries(0),
		)

		Convey("When scanning the network", func() {
			stats, err := client.ScanNetwork(context.Background(), plume.ScanOptions{
				ProbeStart: 0,
				BatchSize:  10,
				Workers:    4,
				Supply:     703_000,
			})

			Convey("Then the probe finds every active wallet exactly once", func() {
				So(err, ShouldBeNil)
				So(stats.TotalWallets, ShouldEqual, 37)
				// 37 + 36 + ... + 1
				So(stats.TotalXP, ShouldEqual, 703)
			})

			Convey("And derived quotients follow the totals", func() {
				So(err, ShouldBeNil)
				So(stats.AvgXP, ShouldAlmostEqual, 703.0/37.0, 0.0001)
				So(stats.TokenPerXP, ShouldAlmostEqual, 1000.0, 0.0001)
				So(stats.Supply, ShouldEqual, 703_000)
			})

			Convey("And no price lookup ran without a symbol", func() {
				So(stats.TokenPrice, ShouldBeNil)
			})
		})
	})

	Convey("Given an unreachable portal", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := plume.NewClient(
			plume.WithLeaderboardURL(server.URL),
			plume.WithPageSize(10),
			plume.WithMaxRetries(0),
		)

		Convey("When scanning", func() {
			_, err := client.ScanNetwork(context.Background(), plume.ScanOptions{
				BatchSize: 10,
				Workers:   2,
			})

			Convey("Then the failed probe aborts the scan", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, plume.ErrProbeFailed), ShouldBeTrue)
			})
		})
	})
}

func TestFetchPrice(t *testing.T) {
	Convey("Given a quote endpoint", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-CMC_PRO_API_KEY") != "test-key" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"data":{"PLUME":{"quote":{"USD":{"price":0.0825}}}}}`)
		}))
		defer server.Close()

		Convey("When the lookup is configured", func() {
			client := plume.NewClient(plume.WithPriceLookup(server.URL, "test-key"))
			price, err := client.FetchPrice(context.Background(), "PLUME")

			Convey("Then the USD quote comes back", func() {
				So(err, ShouldBeNil)
				So(price, ShouldAlmostEqual, 0.0825, 0.000001)
			})
		})

		Convey("When no API key is configured", func() {
			client := plume.NewClient(plume.WithPriceLookup(server.URL, ""))
			_, err := client.FetchPrice(context.Background(), "PLUME")

			Convey("Then the lookup is disabled", func() {
				So(errors.Is(err, plume.ErrPriceDisabled), ShouldBeTrue)
			})
		})

		Convey("When the symbol is missing from the payload", func() {
			client := plume.NewClient(plume.WithPriceLookup(server.URL, "test-key"))
			_, err := client.FetchPrice(context.Background(), "OTHER")

			Convey("Then the body is reported as malformed", func() {
				So(errors.Is(err, plume.ErrMalformedBody), ShouldBeTrue)
			})
		})
	})
}
