package mockportal_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/plumescan/plumescan/internal/mockportal"
)

func TestGeneratePopulation(t *testing.T) {
	Convey("Given a generated population", t, func() {
		wallets := mockportal.GeneratePopulation(500)

		Convey("Then it has the requested size", func() {
			So(len(wallets), ShouldEqual, 500)
		})

		Convey("And it is score-sorted, descending", func() {
			for i := 1; i < len(wallets); i++ {
				So(wallets[i].ActiveXP, ShouldBeLessThanOrEqualTo, wallets[i-1].ActiveXP)
			}
		})

		Convey("And addresses are unique hex strings", func() {
			seen := map[string]bool{}
			for _, w := range wallets {
				So(seen[w.Address], ShouldBeFalse)
				seen[w.Address] = true
				So(len(w.Address), ShouldEqual, 42)
				So(w.Address[:2], ShouldEqual, "0x")
			}
		})

		Convey("And previous totals never go negative", func() {
			for _, w := range wallets {
				So(w.PrevXP, ShouldBeGreaterThanOrEqualTo, 0)
			}
		})
	})
}

func TestMockPortalEndpoints(t *testing.T) {
	Convey("Given a running mock portal", t, func() {
		srv := mockportal.NewServer(&mockportal.Config{Wallets: 100})
		ts := httptest.NewServer(srv.Handler())
		defer ts.Close()

		Convey("When paging the leaderboard", func() {
			resp, err := http.Get(ts.URL + "/api/v1/stats/leaderboard?offset=0&count=30")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			var payload struct {
				Data struct {
					Leaderboard []struct {
						WalletAddress string `json:"walletAddress"`
						TotalXP       int64  `json:"totalXp"`
					} `json:"leaderboard"`
				} `json:"data"`
			}
			So(json.NewDecoder(resp.Body).Decode(&payload), ShouldBeNil)

			Convey("Then one page of sorted rows comes back", func() {
				So(len(payload.Data.Leaderboard), ShouldEqual, 30)
			})

			Convey("And the totals endpoint knows every listed wallet", func() {
				addr := payload.Data.Leaderboard[0].WalletAddress
				resp2, err := http.Get(fmt.Sprintf("%s/api/v1/stats/pp-totals?walletAddress=%s", ts.URL, addr))
				So(err, ShouldBeNil)
				defer resp2.Body.Close()
				So(resp2.StatusCode, ShouldEqual, http.StatusOK)

				var totals struct {
					Data struct {
						PPScores struct {
							ActiveXP struct {
								TotalXP int64 `json:"totalXp"`
							} `json:"activeXp"`
						} `json:"ppScores"`
					} `json:"data"`
				}
				So(json.NewDecoder(resp2.Body).Decode(&totals), ShouldBeNil)
				So(totals.Data.PPScores.ActiveXP.TotalXP, ShouldEqual, payload.Data.Leaderboard[0].TotalXP)
			})
		})

		Convey("When paging past the end", func() {
			resp, err := http.Get(ts.URL + "/api/v1/stats/leaderboard?offset=1000&count=30")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			var payload struct {
				Data struct {
					Leaderboard []struct{} `json:"leaderboard"`
				} `json:"data"`
			}
			So(json.NewDecoder(resp.Body).Decode(&payload), ShouldBeNil)

			Convey("Then the page is empty, not an error", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(len(payload.Data.Leaderboard), ShouldEqual, 0)
			})
		})

		Convey("When asking for an unknown wallet", func() {
			resp, err := http.Get(ts.URL + "/api/v1/stats/pp-totals?walletAddress=0xdeadbeef")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the portal answers 404", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}
