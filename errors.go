package quicwire

import "github.com/dep2p/go-quicwire/pkg/types"

// 公共错误定义
//
// 从 pkg/types 重导出，宿主用 errors.Is 判断分类。
var (
	// ErrSystem 引擎拒绝了操作
	ErrSystem = types.ErrSystem

	// ErrAlreadyClosed 连接已终止
	ErrAlreadyClosed = types.ErrAlreadyClosed

	// ErrNotFound 命名空间或 socket 未注册
	ErrNotFound = types.ErrNotFound

	// ErrAlreadyExists 命名空间已被占用
	ErrAlreadyExists = types.ErrAlreadyExists

	// ErrBadFormat 报文头格式错误
	ErrBadFormat = types.ErrBadFormat

	// ErrCantReceive socket 接收路径故障
	ErrCantReceive = types.ErrCantReceive
)
