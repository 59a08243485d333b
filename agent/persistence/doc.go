/*
包 persistence 提供协调历史记录的持久化存储抽象及多后端实现。

# 核心接口

  - Store: 所有存储的基础接口，提供 Close 和 Ping 健康检查。
  - HistoryStore: 协调历史存储，支持保存记录与按策略倒序查询。

# 核心模型

  - Record: 一次成功协调调用的摘要（策略、响应数、冲突数、共识分数、
    质量分数、耗时）。
  - StoreConfig / RedisStoreConfig: 存储类型选择与后端参数。

# 后端实现

  - Memory: 内存实现，适合开发与测试，重启后数据丢失。
  - File: 基于文件的实现，原子写入 JSON 索引，适合单节点部署。
  - Redis: 基于 Redis 的实现，利用 Sorted Set 按时间索引，支持记录过期。
  - Database: 基于 GORM 的实现，支持 PostgreSQL / MySQL / SQLite。

# 使用方式

	store, err := persistence.NewHistoryStore(config, db)
*/
package persistence
