/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"hdxplayer/pkg/spec"

	"golang.org/x/crypto/pbkdf2"
)

var ErrInvalidLocker = errors.New("not a valid HDX key locker")

// DeriveKey menghasilkan kunci 32-byte dari password dan salt
func DeriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, spec.KDFRounds, 32, sha256.New)
}

// AudioKey is the key track packets of a volume are sealed with.
func AudioKey(password string) []byte {
	return DeriveKey(password, []byte(spec.Salt))
}

// Encrypt seals data with AES-GCM under a random nonce prepended to the output.
func Encrypt(data []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, data, nil), nil
}

// Decrypt opens data produced by Encrypt.
func Decrypt(data []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, io.ErrUnexpectedEOF
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// LockerPath maps album.hdxv to album_keys.dat.
func LockerPath(volumePath string) string {
	return strings.TrimSuffix(volumePath, spec.VolumeExt) + spec.KeyLockerExt
}

// CreateKeyLocker writes the volume password, sealed under the master key,
// next to the volume.
func CreateKeyLocker(volumePath, password string) error {
	keyForDat := DeriveKey(spec.MasterBfKey, []byte(spec.Salt))

	encryptedPass, err := Encrypt([]byte(password), keyForDat)
	if err != nil {
		return err
	}

	f, err := os.Create(LockerPath(volumePath))
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write([]byte(spec.BfKeyMagicV2)); err != nil {
		return err
	}
	if _, err := f.Write(encryptedPass); err != nil {
		return err
	}
	return f.Sync()
}

// UnlockKeyLocker returns the volume password stored in lockerPath.
func UnlockKeyLocker(lockerPath string) (string, error) {
	data, err := os.ReadFile(lockerPath)
	if err != nil {
		return "", err
	}

	if len(data) < len(spec.BfKeyMagicV2) || string(data[:len(spec.BfKeyMagicV2)]) != spec.BfKeyMagicV2 {
		return "", ErrInvalidLocker
	}

	keyForDat := DeriveKey(spec.MasterBfKey, []byte(spec.Salt))
	dec, err := Decrypt(data[len(spec.BfKeyMagicV2):], keyForDat)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLocker, err)
	}

	return string(dec), nil
}
