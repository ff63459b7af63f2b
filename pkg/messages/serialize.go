package messages

import (
	"fmt"
	"sync"

	messagefb "github.com/cbodonnell/settlers/flatbuffers/message"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"
)

// MaxDecodedMessageSize bounds the decompressed size of a single message
const MaxDecodedMessageSize = 4 << 20

var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

// codec returns the shared zstd encoder and decoder. Both are safe for
// concurrent EncodeAll and DecodeAll calls.
func codec() (*zstd.Encoder, *zstd.Decoder, error) {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if codecErr != nil {
			codecErr = fmt.Errorf("failed to create zstd encoder: %v", codecErr)
			return
		}
		decoder, codecErr = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxDecodedMessageSize))
		if codecErr != nil {
			codecErr = fmt.Errorf("failed to create zstd decoder: %v", codecErr)
		}
	})
	return encoder, decoder, codecErr
}

// SerializeMessage encodes m as a flatbuffer and compresses it
func SerializeMessage(m *Message) ([]byte, error) {
	enc, _, err := codec()
	if err != nil {
		return nil, err
	}
	b, err := SerializeMessageFlatbuffer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %v", err)
	}
	return enc.EncodeAll(b, make([]byte, 0, len(b))), nil
}

func DeserializeMessage(data []byte) (*Message, error) {
	_, dec, err := codec()
	if err != nil {
		return nil, err
	}
	b, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress message: %v", err)
	}

	message, err := DeserializeMessageFlatbuffer(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}
	return message, nil
}

func SerializeMessageFlatbuffer(m *Message) ([]byte, error) {
	builder := flatbuffers.NewBuilder(0)

	payload := builder.CreateByteVector(m.Payload)

	messagefb.MessageStart(builder)
	messagefb.MessageAddClientId(builder, m.ClientID)
	messagefb.MessageAddType(builder, byte(m.Type))
	messagefb.MessageAddPayload(builder, payload)
	messageOffset := messagefb.MessageEnd(builder)
	builder.Finish(messageOffset)
	return builder.FinishedBytes(), nil
}

// DeserializeMessageFlatbuffer reads a message table. Panics raised by the
// generated accessors on malformed buffers are returned as errors.
func DeserializeMessageFlatbuffer(b []byte) (message *Message, err error) {
	if len(b) < flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("message buffer too short: %d bytes", len(b))
	}
	defer func() {
		if r := recover(); r != nil {
			message, err = nil, fmt.Errorf("malformed message buffer: %v", r)
		}
	}()
	message = &Message{}
	messageFlatbuffer := messagefb.GetRootAsMessage(b, 0)
	message.ClientID = messageFlatbuffer.ClientId()
	message.Type = MessageType(messageFlatbuffer.Type())
	message.Payload = messageFlatbuffer.PayloadBytes()

	return message, nil
}
