// Package quicwire 驱动外部 QUIC 传输引擎，收发原始 UDP 报文
//
// quicwire 面向在单进程内终结大量并发 QUIC 连接的服务
// （隧道、RPC 传输、游戏后端）：宿主应用无需自己实现报文
// 分帧、丢包恢复或流复用，只需注入一个引擎工厂并消费事件。
//
// 核心组件：
//   - Service: 显式服务对象，聚合各注册表与 socket 服务
//   - 配置注册表 / 暂存缓冲注册表: 按命名空间索引，init 幂等
//   - Socket 轮询器: 每 socket 一个后台 goroutine，等待就绪后批量排空
//   - 连接驱动: 每连接一把锁，把入站字节转成 stream/dgram 事件，
//     把出站报文作为 drain 事件交给宿主传输
//   - 报文头检查器: 连接建立前的无状态路由解析
//
// 使用示例：
//
//	svc := quicwire.New(quicwire.WithEngineFactory(factory))
//	svc.Init("svc")
//	_ = svc.SetApplicationProtos("svc", []string{"h3"})
//	_ = svc.SetMaxIdleTimeout("svc", 5000)
//
//	sink := quicwire.SinkFunc(func(ev quicwire.Event) {
//	    switch ev.Kind {
//	    case quicwire.EventDrain:
//	        _ = svc.SendTo("svc", peer, ev.Data)
//	    }
//	})
//	c, err := svc.AcceptConnection("svc", scid, odcid, sink)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	next, err := c.OnPacket(datagram)
//
// QUIC 线协议状态机本身（握手加密、拥塞控制、ACK/丢包账目）
// 是外部协作者，经 interfaces.Engine 注入，本包只驱动不实现。
package quicwire
