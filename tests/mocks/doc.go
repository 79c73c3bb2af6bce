// Package mocks 提供统一的测试 Mock 实现
//
// # 核心 Mock
//
//   - MockEngine: 模拟 interfaces.Engine，可逐方法注入行为并记录调用
//   - MockEngineFactory: 模拟 interfaces.EngineFactory，记录 Accept 参数
//   - RecordingSink: 记录收到的全部事件，便于断言投递顺序
//
// # 设计原则
//
// 1. 函数式注入: 每个 Mock 都支持通过 XxxFunc 字段注入自定义行为
// 2. 调用记录: 关键 Mock 记录调用历史，便于验证测试行为
// 3. 合理默认值: 零值 MockEngine 表现为一个已握手、无待发数据的空闲引擎
package mocks
