package sim

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("VTimeInSec", func() {
	It("should drop partial milliseconds", func() {
		Expect(VTimeInSec(0.9986).Millis()).To(Equal(uint64(998)))
		Expect(VTimeInSec(1.5).Millis()).To(Equal(uint64(1500)))
		Expect(VTimeInSec(-1).Millis()).To(BeZero())
	})

	It("should count a whole millisecond reached in float steps", func() {
		var t VTimeInSec
		for i := 0; i < 50; i++ {
			t += Seconds(100 * time.Millisecond)
		}

		Expect(t.Millis()).To(Equal(uint64(5000)))
	})

	It("should convert to and from durations", func() {
		Expect(Seconds(1500 * time.Millisecond)).To(Equal(VTimeInSec(1.5)))
		Expect(VTimeInSec(0.25).Duration()).To(Equal(250 * time.Millisecond))
	})
})
