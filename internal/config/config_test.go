package config_test

import (
	"testing"

	"github.com/okian/nobeldash/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DataPath, convey.ShouldEqual, "nobel_laureates_clean.csv")
			convey.So(cfg.Pairing, convey.ShouldEqual, config.PairingPaired)
			convey.So(cfg.CacheBackend, convey.ShouldEqual, config.CacheMemory)
			convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 900)
			convey.So(cfg.WarmWorkers, convey.ShouldEqual, 2)
			convey.So(cfg.WatchData, convey.ShouldBeFalse)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
