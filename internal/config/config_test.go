package config_test

import (
	"testing"

	"github.com/plumescan/plumescan/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			convey.So(cfg.PageSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.Concurrency, convey.ShouldEqual, 250)
			convey.So(cfg.RequestTimeoutSecs, convey.ShouldEqual, 30)
			convey.So(cfg.TopK, convey.ShouldEqual, 20)
			convey.So(cfg.RangeWorkers, convey.ShouldEqual, 1)
			convey.So(cfg.FastApproximate, convey.ShouldBeFalse)
			convey.So(cfg.UserAgent, convey.ShouldEqual, "plume-fast-scan/1.0")
		})

		convey.Convey("And the defaults should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
