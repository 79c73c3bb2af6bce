// Package types 定义 quicwire 公共类型
//
// 本文件定义公共错误分类。
package types

import "errors"

// 公共错误定义
//
// 所有操作级失败都以同步错误返回，调用方用 errors.Is 判断分类。
var (
	// ErrSystem 引擎拒绝了操作
	//
	// 表示底层 QUIC 引擎在解析、加密或状态检查阶段拒绝了本次调用。
	// 只影响当前操作，不影响进程。
	ErrSystem = errors.New("system error")

	// ErrAlreadyClosed 连接已终止
	//
	// 在触碰引擎状态之前检查。观察到该错误后，
	// 调用方不应再对该连接发起任何变更操作。
	ErrAlreadyClosed = errors.New("connection already closed")

	// ErrNotFound 命名空间或 socket 未注册
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists 命名空间已被占用
	ErrAlreadyExists = errors.New("already exists")

	// ErrBadFormat 报文头格式错误
	//
	// 解析只有两种结果：完整成功或 ErrBadFormat，不存在部分成功。
	ErrBadFormat = errors.New("bad format")

	// ErrCantReceive socket 接收路径故障
	//
	// 仅在 ErrorPolicyReportOnce 策略下作为 socket_error 事件上报一次，
	// 轮询循环本身不会因此终止。
	ErrCantReceive = errors.New("cannot receive")
)
