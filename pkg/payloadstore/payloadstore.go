// Package payloadstore implements the Payload Store Adapter (C2): an
// encrypted, random-access byte store addressed by absolute offset. It
// hides the cipher behind a small contract (Create/Open/ReadAt/WriteAt/
// Append/Size/ResetPassword/ClearData); the rest of the container never
// sees plaintext touch disk.
//
// The cipher is AES-256-CTR (stdlib crypto/aes, crypto/cipher): CTR mode
// keystreams from a counter derived from the absolute block offset, which
// is exactly the "random access over offset ranges" the spec requires —
// no other common mode supports seeking without decrypting from the start.
// The key is derived from the container password with
// golang.org/x/crypto/argon2 (memory-hard, password-appropriate KDF,
// replacing the original C++ Crypto.h stub), salted with a random value
// generated at Create time and persisted via GetDataToSave/Open. A second
// golang.org/x/crypto/hkdf derivation produces the actual AES key from the
// argon2 output plus a fixed info string, so ResetPassword can re-derive a
// fresh file-encryption key without reusing the argon2 output directly as
// key material.
package payloadstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"

	"github.com/cryptobox/cryptobox/pkg/errs"
)

const (
	saltSize = 16
	keySize  = 32 // AES-256

	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
)

var hkdfInfo = []byte("cryptobox-payload-stream-key-v1")

// Store is the Payload Store Adapter: a single backing file containing
// ciphertext, addressed by absolute plaintext offset (offset == ciphertext
// offset for CTR mode — no expansion).
type Store struct {
	mu   sync.Mutex
	file *os.File
	size int64

	salt   []byte
	key    [keySize]byte
	block  cipher.Block
}

// Create creates a new, empty payload file at path, encrypted under password.
func Create(path string, password string) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, errs.New(errs.AlreadyExists, "payload file already exists").WithPath(path)
		}
		return nil, errs.Wrap(errs.CantCreate, "create payload file", err).WithPath(path)
	}

	salt, err := newSalt()
	if err != nil {
		f.Close()
		return nil, err
	}

	s := &Store{file: f, salt: salt}
	if err := s.deriveKey(password); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// Open opens an existing payload file at path, decrypting under password
// using the settings blob previously produced by GetDataToSave.
func Open(path string, password string, settings []byte) (*Store, error) {
	salt, err := decodeSettings(settings)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.New(errs.CantOpen, "payload file does not exist").WithPath(path)
		}
		return nil, errs.Wrap(errs.CantOpen, "open payload file", err).WithPath(path)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errs.Wrap(errs.CantOpen, "stat payload file", err).WithPath(path)
	}

	s := &Store{file: f, salt: salt, size: info.Size()}
	if err := s.deriveKey(password); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) deriveKey(password string) error {
	master := argon2.IDKey([]byte(password), s.salt, argonTime, argonMemory, argonThreads, keySize)
	kdf := hkdf.New(sha256.New, master, s.salt, hkdfInfo)
	if _, err := io.ReadFull(kdf, s.key[:]); err != nil {
		return errs.Wrap(errs.Internal, "derive payload key", err)
	}
	block, err := aes.NewCipher(s.key[:])
	if err != nil {
		return errs.Wrap(errs.Internal, "init cipher", err)
	}
	s.block = block
	return nil
}

// GetDataToSave returns the opaque settings blob (salt) to persist in the
// metadata store's Sets.storage_data column.
func (s *Store) GetDataToSave() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return encodeSettings(s.salt)
}

// ResetPassword re-derives the encryption key under newPassword using a
// freshly generated salt and re-encrypts the whole payload under the new
// key, reading it into memory in one piece. Callers must persist the
// updated settings blob (GetDataToSave) afterward; an Open with the old
// settings blob decrypts to garbage.
func (s *Store) ResetPassword(newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plain := make([]byte, s.size)
	if s.size > 0 {
		if _, err := s.file.ReadAt(plain, 0); err != nil && err != io.EOF {
			return errs.Wrap(errs.CantRead, "read payload store for re-encryption", err)
		}
		s.xor(plain, 0)
	}

	salt, err := newSalt()
	if err != nil {
		return err
	}
	s.salt = salt
	if err := s.deriveKey(newPassword); err != nil {
		return err
	}

	if s.size > 0 {
		s.xor(plain, 0)
		if _, err := s.file.WriteAt(plain, 0); err != nil {
			return errs.Wrap(errs.CantWrite, "re-encrypt payload store", err)
		}
	}
	return nil
}

// newSalt generates a fresh saltSize-byte salt from a random (v4) UUID:
// 16 bytes, of which 122 bits are CSPRNG output and 6 are fixed
// version/variant bits — good enough entropy for a KDF salt.
func newSalt() ([]byte, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "generate salt", err)
	}
	salt := make([]byte, saltSize)
	copy(salt, id[:])
	return salt, nil
}

// ClearData truncates the payload file to zero length, used by Container.Clear.
func (s *Store) ClearData() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.file.Truncate(0); err != nil {
		return errs.Wrap(errs.CantWrite, "truncate payload file", err)
	}
	s.size = 0
	return nil
}

// Size returns the current length of the payload store in bytes.
func (s *Store) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Close closes the underlying file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.file.Close(); err != nil {
		return errs.Wrap(errs.Disconnected, "close payload file", err)
	}
	return nil
}

// ReadAt decrypts and returns length bytes starting at offset. Reading
// outside the current payload size fails with a CantRead error.
func (s *Store) ReadAt(offset int64, length int64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if offset < 0 || length < 0 || offset+length > s.size {
		return nil, errs.New(errs.CantRead, "read past end of payload store")
	}
	buf := make([]byte, length)
	if length > 0 {
		if _, err := s.file.ReadAt(buf, offset); err != nil && err != io.EOF {
			return nil, errs.Wrap(errs.CantRead, "read payload store", err)
		}
		s.xor(buf, offset)
	}
	return buf, nil
}

// WriteAt encrypts and writes data at offset. Writing outside the current
// size is only allowed contiguously from Size() (i.e. offset == Size());
// use Append for that case, or call WriteAt with offset == Size() directly.
func (s *Store) WriteAt(offset int64, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeAtLocked(offset, data)
}

func (s *Store) writeAtLocked(offset int64, data []byte) error {
	if offset < 0 {
		return errs.New(errs.WrongParameters, "negative offset")
	}
	if offset > s.size {
		return errs.New(errs.WrongParameters, "WriteAt must be contiguous with the current end; use Append")
	}
	if len(data) == 0 {
		return nil
	}

	ciphertext := make([]byte, len(data))
	copy(ciphertext, data)
	s.xor(ciphertext, offset)

	if _, err := s.file.WriteAt(ciphertext, offset); err != nil {
		return errs.Wrap(errs.CantWrite, "write payload store", err)
	}
	if end := offset + int64(len(data)); end > s.size {
		s.size = end
	}
	return nil
}

// Append encrypts and writes data at the current end of the payload store,
// returning the offset it was written at.
func (s *Store) Append(data []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	offset := s.size
	if err := s.writeAtLocked(offset, data); err != nil {
		return 0, err
	}
	return offset, nil
}

// xor applies the AES-CTR keystream for the given absolute offset in place.
// CTR mode's keystream is block-addressable: seeking to byte offset o means
// starting the counter at block o/16 with an o%16 byte skip, which is what
// gives this adapter true random access without decrypting from the start.
func (s *Store) xor(buf []byte, offset int64) {
	const blockSize = aes.BlockSize
	blockIndex := uint64(offset) / blockSize
	skip := int(uint64(offset) % blockSize)

	var iv [blockSize]byte
	binary.BigEndian.PutUint64(iv[blockSize-8:], blockIndex)

	stream := cipher.NewCTR(s.block, iv[:])
	if skip > 0 {
		discard := make([]byte, skip)
		stream.XORKeyStream(discard, discard)
	}
	stream.XORKeyStream(buf, buf)
}

func encodeSettings(salt []byte) []byte {
	out := make([]byte, len(salt))
	copy(out, salt)
	return out
}

func decodeSettings(settings []byte) ([]byte, error) {
	if len(settings) != saltSize {
		return nil, errs.New(errs.NotValid, "malformed payload store settings blob")
	}
	salt := make([]byte, saltSize)
	copy(salt, settings)
	return salt, nil
}
