package security

import (
	"strings"
	"testing"
)

func TestHashPassword_ReturnsBcryptHash(t *testing.T) {
	hash, err := HashPassword("my-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if hash == "my-password" {
		t.Fatal("hash must not equal the plaintext password")
	}
	// bcryptのコスト12プレフィックスを確認
	if !strings.HasPrefix(hash, "$2a$12$") && !strings.HasPrefix(hash, "$2b$12$") {
		t.Errorf("hash %q should use bcrypt cost 12", hash)
	}
}

func TestHashPassword_SamePasswordProducesDifferentHashes(t *testing.T) {
	hash1, err := HashPassword("my-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	hash2, err := HashPassword("my-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	// ソルトにより同じパスワードでもハッシュは異なること
	if hash1 == hash2 {
		t.Error("two hashes of the same password should differ")
	}
}

func TestComparePassword_Match(t *testing.T) {
	hash, err := HashPassword("my-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !ComparePassword(hash, "my-password") {
		t.Error("ComparePassword should succeed for the original password")
	}
}

func TestComparePassword_Mismatch(t *testing.T) {
	hash, err := HashPassword("my-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if ComparePassword(hash, "wrong-password") {
		t.Error("ComparePassword should fail for a wrong password")
	}
	if ComparePassword(hash, "") {
		t.Error("ComparePassword should fail for an empty password")
	}
	if ComparePassword("not-a-hash", "my-password") {
		t.Error("ComparePassword should fail for a malformed hash")
	}
}
