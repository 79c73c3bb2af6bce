// Package types 定义 quicwire 的基础类型
//
// 这是整个系统的最底层包，不依赖任何其他 quicwire 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据：
//   - Peer: 远端地址句柄
//   - ConnectionID: QUIC 连接标识
//   - PacketType: 报文头类型
//   - Event: 异步通知事件
//   - 公共错误（SystemError/AlreadyClosed/NotFound/BadFormat 等分类）
package types
