// 版权所有 2024 AgentQuorum Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 server 管理 AgentQuorum 进程内的一组 HTTP 端点（协调 API 与 metrics）。

# 核心类型

  - Group：按名称注册端点，整组启动、整组关闭。
  - Config：单个端点的监听地址与读写、空闲超时。
  - ExitError：运行中异常退出的端点及其错误。

# 主要能力

  - Start 先为全部端点建立监听，任一失败即释放已建立的监听；
    Addr(name) 返回实际监听地址，便于以 ":0" 启动的测试获取端口。
  - Wait 监听 SIGINT/SIGTERM、ctx 结束或任一端点异常退出，
    随后按注册逆序在关闭超时内排空请求。
*/
package server
