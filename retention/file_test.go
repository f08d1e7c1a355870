package retention_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/deepsleep/retention"
)

var _ = Describe("FileStore", func() {
	var (
		path  string
		store *retention.FileStore
	)

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "rtc.json")
		store = retention.NewFileStore(path)
	})

	It("should read not found from a missing file", func() {
		_, found, err := store.Read("bootCount")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	It("should survive reopening", func() {
		Expect(store.Write("bootCount", 5)).To(Succeed())
		Expect(store.Close()).To(Succeed())

		reopened := retention.NewFileStore(path)
		v, found, err := reopened.Read("bootCount")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(v).To(Equal(int64(5)))
	})

	It("should not leave temporary files behind", func() {
		Expect(store.Write("bootCount", 1)).To(Succeed())
		Expect(store.Write("bootCount", 2)).To(Succeed())

		entries, err := os.ReadDir(filepath.Dir(path))
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Name()).To(Equal("rtc.json"))
	})

	It("should erase by removing the file", func() {
		Expect(store.Write("bootCount", 3)).To(Succeed())
		Expect(store.Erase()).To(Succeed())
		Expect(path).NotTo(BeAnExistingFile())

		Expect(store.Erase()).To(Succeed())
	})

	It("should report a corrupted file", func() {
		Expect(os.WriteFile(path, []byte("{"), 0o600)).To(Succeed())

		_, _, err := store.Read("bootCount")
		Expect(err).To(MatchError(ContainSubstring("decoding")))
	})

	It("should be created by Open", func() {
		s, err := retention.Open(retention.KindFile, path)
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(BeAssignableToTypeOf(&retention.FileStore{}))
	})
})

var _ = Describe("Open", func() {
	It("should default to memory", func() {
		s, err := retention.Open("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(BeAssignableToTypeOf(&retention.MemoryStore{}))
	})

	It("should need a path for persistent stores", func() {
		_, err := retention.Open(retention.KindFile, "")
		Expect(err).To(HaveOccurred())

		_, err = retention.Open(retention.KindSQLite, "")
		Expect(err).To(HaveOccurred())
	})

	It("should reject unknown kinds", func() {
		_, err := retention.Open("eeprom", "x")
		Expect(err).To(MatchError(ContainSubstring("unknown store kind")))
	})
})
