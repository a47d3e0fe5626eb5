package archive_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/runtogether/pacer/internal/adapters/archive"
	"github.com/runtogether/pacer/internal/adapters/repository"
	"github.com/runtogether/pacer/internal/domain/decision"
	. "github.com/smartystreets/goconvey/convey"
)

func TestArchive(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fresh archive database", t, func() {
		a, err := archive.Open(filepath.Join(t.TempDir(), "pacer.db"))
		So(err, ShouldBeNil)
		defer a.Close()

		Convey("Then it starts empty", func() {
			n, err := a.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)
		})

		Convey("When summaries are saved", func() {
			err := a.SaveSummary(ctx, repository.Summary{
				SessionID: "run-1",
				Level:     decision.Intermediate,
				Samples:   120,
				StartTS:   0,
				EndTS:     119,
				AvgHR:     138.5,
				MaxHR:     162,
				AvgSpeed:  3.1,
			})
			So(err, ShouldBeNil)

			So(a.SaveSummary(ctx, repository.Summary{
				SessionID: "run-2",
				Level:     decision.Advanced,
				Samples:   40,
			}), ShouldBeNil)

			Convey("Then they are all counted", func() {
				n, err := a.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
			})

			Convey("And repeated evictions of one session id coexist", func() {
				So(a.SaveSummary(ctx, repository.Summary{SessionID: "run-1"}), ShouldBeNil)

				n, err := a.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
			})
		})
	})

	Convey("Given an archive reopened on the same file", t, func() {
		path := filepath.Join(t.TempDir(), "pacer.db")

		a, err := archive.Open(path)
		So(err, ShouldBeNil)
		So(a.SaveSummary(ctx, repository.Summary{SessionID: "run-1"}), ShouldBeNil)
		So(a.Close(), ShouldBeNil)

		Convey("Then previously saved summaries persist", func() {
			b, err := archive.Open(path)
			So(err, ShouldBeNil)
			defer b.Close()

			n, err := b.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
		})
	})
}
