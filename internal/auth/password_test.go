package auth

import (
	"strings"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("PasswordHasher", func() {
	var hasher *PasswordHasher

	ginkgo.BeforeEach(func() {
		hasher = NewPasswordHasher(4)
	})

	ginkgo.It("should verify a password against its own hash", func() {
		hash, err := hasher.Hash("s3cret-passw0rd")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(hasher.Verify("s3cret-passw0rd", hash)).To(gomega.BeTrue())
		gomega.Expect(hasher.Verify("wrong-passw0rd", hash)).To(gomega.BeFalse())
	})

	ginkgo.It("should verify passwords longer than the 72-byte bcrypt limit", func() {
		long := strings.Repeat("a", 100)
		hash, err := hasher.Hash(long)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(hasher.Verify(long, hash)).To(gomega.BeTrue())
	})

	ginkgo.It("should treat long passwords identical in the first 72 bytes as the same", func() {
		base := strings.Repeat("a", 72)
		hash, err := hasher.Hash(base + "tail-one")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(hasher.Verify(base+"tail-two", hash)).To(gomega.BeTrue())
	})

	ginkgo.It("should handle a multibyte rune split by the truncation boundary", func() {
		// 70 ASCII bytes followed by a 3-byte rune straddling byte 72
		password := strings.Repeat("a", 70) + "世界"
		hash, err := hasher.Hash(password)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(hasher.Verify(password, hash)).To(gomega.BeTrue())
	})

	ginkgo.It("should verify false for a malformed stored hash", func() {
		gomega.Expect(hasher.Verify("anything", "not-a-bcrypt-hash")).To(gomega.BeFalse())
		gomega.Expect(hasher.Verify("anything", "")).To(gomega.BeFalse())
	})
})

var _ = ginkgo.Describe("TOTP helpers", func() {
	ginkgo.It("should generate distinct base32 secrets without padding", func() {
		a, err := GenerateOTPSecret()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		b, err := GenerateOTPSecret()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(a).NotTo(gomega.Equal(b))
		gomega.Expect(a).NotTo(gomega.ContainSubstring("="))
		gomega.Expect(a).To(gomega.HaveLen(32))
	})

	ginkgo.It("should verify the code for the current time step", func() {
		secret, err := GenerateOTPSecret()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		code, err := CurrentOTP(secret)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(code).To(gomega.HaveLen(6))

		gomega.Expect(VerifyOTP(secret, code)).To(gomega.BeTrue())
	})

	ginkgo.It("should reject a code for a different secret", func() {
		secretA, err := GenerateOTPSecret()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		secretB, err := GenerateOTPSecret()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		code, err := CurrentOTP(secretA)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Expect(VerifyOTP(secretB, code)).To(gomega.BeFalse())
	})
})
