package remote

import (
	"encoding/json"
	"fmt"

	"github.com/tetete478/Snipee-sub000/internal/common"
	"github.com/tetete478/Snipee-sub000/internal/cryptox"
	"github.com/tetete478/Snipee-sub000/internal/models"
)

// envelope wraps the encrypted form of a sync document. Plaintext documents
// are stored as bare JSON without an envelope, so both forms stay readable
// regardless of the client's encryption setting.
//
// The argon2 salt travels inside the envelope: every device that knows the
// passphrase can derive the document key without any shared local state.
type envelope struct {
	Sealed bool   `json:"sealed"`
	Salt   []byte `json:"salt"`
	Nonce  []byte `json:"nonce"`
	Data   []byte `json:"data"`
}

// Codec converts sync documents to and from their wire bytes. A nil
// passphrase produces plaintext JSON; a non-nil passphrase seals the payload
// with AES-GCM under an argon2id key derived with a fresh salt per encode.
type Codec struct {
	passphrase []byte
}

func NewCodec(passphrase []byte) *Codec {
	return &Codec{passphrase: passphrase}
}

func (c *Codec) Encode(doc *models.SyncDocument) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEncode, err)
	}
	if c.passphrase == nil {
		return data, nil
	}

	salt := cryptox.NewSalt()
	key := cryptox.DeriveKey(c.passphrase, salt)
	defer common.WipeByteArray(key)

	sealed, nonce, err := cryptox.Seal(data, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEncode, err)
	}

	out, err := json.Marshal(envelope{Sealed: true, Salt: salt, Nonce: nonce, Data: sealed})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEncode, err)
	}
	return out, nil
}

// Decode parses wire bytes back into a document. Timestamps are normalized
// to UTC on the way in so merge comparisons never see mixed offsets.
func (c *Codec) Decode(data []byte) (*models.SyncDocument, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && env.Sealed {
		if c.passphrase == nil {
			return nil, fmt.Errorf("document is encrypted and no passphrase is configured")
		}
		if len(env.Salt) != cryptox.SaltSize {
			return nil, fmt.Errorf("bad envelope salt length: %d", len(env.Salt))
		}

		key := cryptox.DeriveKey(c.passphrase, env.Salt)
		plain, err := cryptox.Open(env.Data, env.Nonce, key)
		common.WipeByteArray(key)
		if err != nil {
			return nil, fmt.Errorf("opening sealed document: %w", err)
		}
		data = plain
	}

	var doc models.SyncDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling document: %w", err)
	}
	if doc.Version == 0 {
		return nil, fmt.Errorf("missing document version")
	}
	if err := doc.Normalize(); err != nil {
		return nil, fmt.Errorf("normalizing document: %w", err)
	}
	return &doc, nil
}
