package engine

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// conn frames msgpack-rpc requests over a single stream. It is not safe for
// concurrent use; Client serializes access.
type conn struct {
	nc    net.Conn
	w     *bufio.Writer
	enc   *msgpack.Encoder
	dec   *msgpack.Decoder
	msgID uint32
}

func newConn(nc net.Conn) *conn {
	w := bufio.NewWriter(nc)
	return &conn{
		nc:  nc,
		w:   w,
		enc: msgpack.NewEncoder(w),
		dec: msgpack.NewDecoder(bufio.NewReader(nc)),
	}
}

func (c *conn) call(ctx context.Context, method string, out any, args ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = c.nc.SetDeadline(dl)
		defer c.nc.SetDeadline(time.Time{})
	}
	if args == nil {
		args = []any{}
	}
	c.msgID++
	id := c.msgID

	if err := c.enc.EncodeArrayLen(4); err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}
	if err := c.enc.EncodeInt(requestType); err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}
	if err := c.enc.EncodeUint32(id); err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}
	if err := c.enc.EncodeString(method); err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}
	if err := c.enc.Encode(args); err != nil {
		return fmt.Errorf("encode %s args: %w", method, err)
	}
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("send %s: %w", method, err)
	}

	n, err := c.dec.DecodeArrayLen()
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}
	if n != 4 {
		return fmt.Errorf("read %s response: expected 4 elements, got %d", method, n)
	}
	kind, err := c.dec.DecodeInt()
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}
	if kind != responseType {
		return fmt.Errorf("read %s response: unexpected message type %d", method, kind)
	}
	rid, err := c.dec.DecodeUint32()
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}
	if rid != id {
		return fmt.Errorf("read %s response: message id %d, want %d", method, rid, id)
	}
	rpcErr, err := c.dec.DecodeInterface()
	if err != nil {
		return fmt.Errorf("read %s error field: %w", method, err)
	}
	if rpcErr != nil {
		if err := c.dec.Skip(); err != nil {
			return fmt.Errorf("read %s result: %w", method, err)
		}
		return &RPCError{Method: method, Detail: rpcErr}
	}
	if out == nil {
		return c.dec.Skip()
	}
	if err := c.dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

func (c *conn) close() error {
	return c.nc.Close()
}
