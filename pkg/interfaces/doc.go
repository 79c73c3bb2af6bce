// Package interfaces 定义 quicwire 的公共接口
//
// 本包只含接口与其哨兵错误，不含实现：
//   - Engine: 外部 QUIC 协议状态机（本系统驱动它，不重新实现它）
//   - EngineFactory: 按配置接受新连接、产出 Engine 实例
//   - EventSink: 宿主事件监听器（单一 Deliver 方法）
package interfaces
