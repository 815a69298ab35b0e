package consts

// Base58 地址常量（可读性高，适合配置与日志使用）
const (
	// 来源: https://github.com/project-serum/serum-dex/blob/master/dex/src/lib.rs
	SerumDexV1ProgramStr = "BJ3jrUzddfuSrZHXSCxMUUQsjKEyLmuuyZebkcaFp2fg"
	SerumDexV2ProgramStr = "EUqojwWA2rd19FZrzeBncJsm38Jm1hEhE3zsmX3bRc2o"
	SerumDexV3ProgramStr = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"

	// OpenBook 为 Serum v3 的社区分叉，指令格式完全一致
	OpenBookV1ProgramStr = "srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX"
)
