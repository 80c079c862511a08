package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/vendorx/marketplace/pkg/util"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{name: "simple", password: "secret1"},
		{name: "unicode", password: "pässwörd🔐"},
		{name: "special chars", password: "p@ssw0rd!#$%"},
		{name: "exactly 72 bytes", password: strings.Repeat("a", MaxPasswordBytes)},
	}

	hasher := NewPasswordHasher(bcrypt.MinCost)
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			hash, err := hasher.Hash(test.password)
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}
			if hash == test.password || !strings.HasPrefix(hash, "$2a$") {
				t.Fatalf("Hash() returned unexpected digest %q", hash)
			}
			if !hasher.Verify(test.password, hash) {
				t.Fatal("Verify() = false for the hashed password")
			}
			if hasher.Verify(test.password+"x", hash) {
				t.Fatal("Verify() = true for a different password")
			}
		})
	}
}

func TestPasswordHasher_Salted(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	first, err := hasher.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	second, err := hasher.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password should differ")
	}
	if !hasher.Verify("secret1", first) || !hasher.Verify("secret1", second) {
		t.Fatal("both digests should verify")
	}
}

func TestPasswordHasher_RejectsBadInput(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	for _, password := range []string{"", strings.Repeat("b", MaxPasswordBytes+1)} {
		if _, err := hasher.Hash(password); !apperrors.HasCode(err, apperrors.CodeHashing) {
			t.Errorf("Hash(len=%d) error = %v, want HASHING_ERROR", len(password), err)
		}
	}
}

func TestPasswordHasher_VerifyMalformedDigest(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	for _, digest := range []string{"", "not-a-hash", "$2a$04$short"} {
		if hasher.Verify("secret1", digest) {
			t.Errorf("Verify() = true for malformed digest %q", digest)
		}
	}
}

func TestNewPasswordHasher_ClampsCost(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: 0, want: DefaultBcryptCost},
		{in: 1, want: bcrypt.MinCost},
		{in: 10, want: 10},
		{in: 99, want: bcrypt.MaxCost},
	}
	for _, test := range tests {
		if got := NewPasswordHasher(test.in).Cost(); got != test.want {
			t.Errorf("NewPasswordHasher(%d).Cost() = %d, want %d", test.in, got, test.want)
		}
	}
}
