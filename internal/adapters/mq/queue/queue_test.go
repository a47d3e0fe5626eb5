package queue

import (
	"context"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
)

func TestInMemorySpool(t *testing.T) {
	convey.Convey("Given an in-memory spool", t, func() {
		ctx := context.Background()

		convey.Convey("When enqueuing summaries", func() {
			q := NewInMemorySpool(WithCapacity(2))
			defer func() { _ = q.Close() }()

			convey.So(q.Enqueue(ctx, Summary{SessionID: "a"}), convey.ShouldBeTrue)
			convey.So(q.Enqueue(ctx, Summary{SessionID: "b"}), convey.ShouldBeTrue)

			convey.Convey("Then the spool reports its occupancy", func() {
				convey.So(q.Len(ctx), convey.ShouldEqual, 2)
			})

			convey.Convey("And a full spool rejects further summaries", func() {
				convey.So(q.Enqueue(ctx, Summary{SessionID: "c"}), convey.ShouldBeFalse)
				convey.So(q.Len(ctx), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When dequeuing summaries", func() {
			q := NewInMemorySpool()

			convey.So(q.Enqueue(ctx, Summary{SessionID: "first"}), convey.ShouldBeTrue)
			convey.So(q.Enqueue(ctx, Summary{SessionID: "second"}), convey.ShouldBeTrue)

			out := q.Dequeue(ctx)

			convey.Convey("Then summaries come out in order", func() {
				s1 := <-out
				s2 := <-out
				convey.So(s1.SessionID, convey.ShouldEqual, "first")
				convey.So(s2.SessionID, convey.ShouldEqual, "second")
			})

			convey.Convey("And closing the spool drains and closes the channel", func() {
				convey.So(q.Close(), convey.ShouldBeNil)

				received := 0
				for range out {
					received++
				}
				convey.So(received, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the spool is closed", func() {
			q := NewInMemorySpool()
			convey.So(q.Close(), convey.ShouldBeNil)

			convey.Convey("Then it reports closed and rejects enqueues", func() {
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				convey.So(q.Enqueue(ctx, Summary{SessionID: "late"}), convey.ShouldBeFalse)
			})

			convey.Convey("And closing again is a no-op", func() {
				convey.So(q.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the dequeue context is cancelled", func() {
			q := NewInMemorySpool()
			defer func() { _ = q.Close() }()

			dctx, cancel := context.WithCancel(ctx)
			out := q.Dequeue(dctx)
			cancel()

			convey.So(q.Enqueue(ctx, Summary{SessionID: "a"}), convey.ShouldBeTrue)

			convey.Convey("Then the consumer channel closes", func() {
				select {
				case _, ok := <-out:
					if ok {
						// The goroutine may have handed over the first
						// summary before observing cancellation.
						_, ok = <-out
						convey.So(ok, convey.ShouldBeFalse)
					}
				case <-time.After(time.Second):
					t.Fatal("dequeue channel did not close")
				}
			})
		})
	})
}
