package retention_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/deepsleep/retention"
)

type brokenStore struct {
	retention.MemoryStore
}

func (s *brokenStore) Read(string) (int64, bool, error) {
	return 0, false, errors.New("bus fault")
}

var _ = Describe("Slot", func() {
	var (
		store *retention.MemoryStore
		slot  *retention.Slot
	)

	BeforeEach(func() {
		store = retention.NewMemoryStore()
		slot = retention.NewSlot(store, "bootCount", 32)
	})

	It("should read zero before the first write", func() {
		Expect(slot.Load()).To(Equal(int64(0)))
	})

	It("should know its width", func() {
		Expect(slot.Max()).To(Equal(int64(1<<31 - 1)))
		Expect(retention.NewSlot(store, "x", 64).Max()).
			To(Equal(int64(1<<63 - 1)))
	})

	It("should increment through the store", func() {
		for i := int64(1); i <= 3; i++ {
			Expect(slot.Increment()).To(Equal(i))
		}

		v, found, err := store.Read("bootCount")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(v).To(Equal(int64(3)))
	})

	It("should see writes made by another slot on the same store", func() {
		other := retention.NewSlot(store, "bootCount", 32)
		Expect(other.Store(41)).To(Succeed())

		Expect(slot.Increment()).To(Equal(int64(42)))
	})

	It("should refuse to overflow", func() {
		Expect(slot.Store(slot.Max())).To(Succeed())

		_, err := slot.Increment()
		Expect(err).To(MatchError(retention.ErrOverflow))
		Expect(slot.Load()).To(Equal(slot.Max()))
	})

	It("should refuse negative values", func() {
		Expect(slot.Store(-1)).To(MatchError(retention.ErrNegative))
	})

	It("should read zero after erase", func() {
		Expect(slot.Store(7)).To(Succeed())
		Expect(store.Erase()).To(Succeed())
		Expect(slot.Load()).To(Equal(int64(0)))
	})

	It("should report store failures", func() {
		slot = retention.NewSlot(&brokenStore{}, "bootCount", 32)

		_, err := slot.Increment()
		Expect(err).To(MatchError("bus fault"))
	})

	It("should reject bad widths and names", func() {
		Expect(func() { retention.NewSlot(store, "x", 1) }).To(Panic())
		Expect(func() { retention.NewSlot(store, "x", 65) }).To(Panic())
		Expect(func() { retention.NewSlot(store, "", 32) }).To(Panic())
	})
})
