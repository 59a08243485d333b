// 版权所有 2024 AgentQuorum Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 database 提供协调历史库的 GORM 连接管理。

# 核心类型

  - PoolManager：持有 GORM DB 与底层 sql.DB，负责连接池参数、
    后台健康检查与关闭。
  - PoolConfig：最大空闲/打开连接数、连接生命周期与健康检查间隔。
  - StatsRecorder：健康检查后接收连接数快照，metrics.Collector 实现该接口。

# 主要能力

  - Open/Dialector 按驱动名选择 postgres、mysql 或纯 Go sqlite 方言。
  - 健康检查定时 PingContext，并把 open/idle 连接数上报给 StatsRecorder。
  - Close 先停止健康检查 goroutine 再关闭连接池，可重复调用。
*/
package database
