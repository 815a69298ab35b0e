package consts

// GrpcAccountInclude 是 gRPC 区块订阅的默认过滤器：
// 只推送包含订单簿市场程序调用的交易
var GrpcAccountInclude = []string{
	SerumDexV1ProgramStr,
	SerumDexV2ProgramStr,
	SerumDexV3ProgramStr,
	OpenBookV1ProgramStr,
}
