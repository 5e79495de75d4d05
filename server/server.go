// Package server 通过 TCP 对外提供驱动的时间查询和远程等待(alarmd).
package server

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fixkme/tickdriver/mlog"
	"github.com/fixkme/tickdriver/timer"
	"github.com/google/uuid"
	"github.com/panjf2000/gnet/v2"
)

type Options struct {
	gnet.Options
	Addr     string // tcp://127.0.0.1:7430
	MaxFrame int    // 单帧上限, 0 不限制
}

type Server struct {
	gnet.BuiltinEventEngine
	eng      gnet.Engine
	booted   chan struct{}
	handler  *Handler
	opt      *Options
	sessions atomic.Int64
}

// session 每个连接一个, id 用于日志关联
type session struct {
	id     uuid.UUID
	conn   gnet.Conn
	closed atomic.Bool
	served atomic.Int64
}

func NewServer(src timer.Source, opt *Options) *Server {
	return &Server{
		booted:  make(chan struct{}),
		handler: NewHandler(src),
		opt:     opt,
	}
}

func (s *Server) OnBoot(eng gnet.Engine) (action gnet.Action) {
	s.eng = eng
	close(s.booted)
	mlog.Infof("alarmd listening on %s", s.opt.Addr)
	return gnet.None
}

func (s *Server) OnOpen(c gnet.Conn) (out []byte, action gnet.Action) {
	sess := &session{id: uuid.New(), conn: c}
	c.SetContext(sess)
	s.sessions.Add(1)
	mlog.Debugf("session %s opened from %v", sess.id, c.RemoteAddr())
	return nil, gnet.None
}

func (s *Server) OnClose(c gnet.Conn, err error) (action gnet.Action) {
	if sess, ok := c.Context().(*session); ok {
		sess.closed.Store(true)
		s.sessions.Add(-1)
		mlog.Debugf("session %s closed after %d requests, err=%v", sess.id, sess.served.Load(), err)
	}
	return gnet.None
}

// OnTraffic Peek/Next 返回的切片在返回后会被复用, 解码时已拷出所有字段
func (s *Server) OnTraffic(c gnet.Conn) (r gnet.Action) {
	sess := c.Context().(*session)
	for {
		lenBuf, err := c.Peek(msgLenSize)
		if err != nil {
			return gnet.None
		}
		totalLen, err := frameLen(lenBuf, s.opt.MaxFrame)
		if err != nil {
			mlog.Warnf("session %s: %v", sess.id, err)
			return gnet.Close
		}
		if c.InboundBuffered() < totalLen {
			return gnet.None
		}
		c.Discard(msgLenSize)
		// 全零字段的请求消息体为空, Next(0) 会取走全部缓冲, 不能调用
		var packetBuf []byte
		if bodyLen := totalLen - msgLenSize; bodyLen > 0 {
			if packetBuf, err = c.Next(bodyLen); err != nil {
				return gnet.None
			}
		}
		req := new(Request)
		if err = req.Unmarshal(packetBuf); err == nil {
			err = s.handler.Serve(req, sess.reply)
		}
		if err != nil {
			mlog.Warnf("session %s bad request: %v", sess.id, err)
			return gnet.Close
		}
		sess.served.Add(1)
	}
}

func (sess *session) reply(rep *Reply) {
	if sess.closed.Load() {
		return
	}
	buf := rep.AppendFrame(make([]byte, 0, 32))
	err := sess.conn.AsyncWrite(buf, func(_ gnet.Conn, werr error) error {
		if werr != nil {
			mlog.Warnf("session %s reply %d failed: %v", sess.id, rep.Seq, werr)
		}
		return nil
	})
	if err != nil {
		mlog.Warnf("session %s reply %d: %v", sess.id, rep.Seq, err)
	}
}

func (s *Server) Sessions() int64 {
	return s.sessions.Load()
}

// Run 阻塞直到 Stop
func (s *Server) Run() error {
	return gnet.Run(s, s.opt.Addr, gnet.WithOptions(s.opt.Options))
}

func (s *Server) Stop(ctx context.Context) error {
	select {
	case <-s.booted:
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.eng.Stop(ctx)
}

// Module 挂到 app 上运行
type Module struct {
	*Server
	name string
}

func NewModule(name string, s *Server) *Module {
	return &Module{Server: s, name: name}
}

func (m *Module) OnInit() error {
	return nil
}

func (m *Module) Run() {
	if err := m.Server.Run(); err != nil {
		mlog.Errorf("%s run error: %v", m.name, err)
	}
}

func (m *Module) Destroy() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Server.Stop(ctx); err != nil {
		mlog.Warnf("%s stop: %v", m.name, err)
	}
}

func (m *Module) Name() string {
	return m.name
}
