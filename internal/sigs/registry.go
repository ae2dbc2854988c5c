// Package sigs is the process-wide, immutable registry of keccak-256
// event-signature hashes and their semantic kind (SPEC_FULL.md §4.1).
// Hashes are computed once at init() from canonical signature strings;
// comparisons elsewhere in the pipeline are case-insensitive hex on
// [32]byte, never string matching.
package sigs

import (
	"strings"

	"golang.org/x/crypto/sha3"
)

// Kind enumerates the semantic event kinds a topic0 can resolve to. This
// is the output of the Log Decoder's topic0 lookup; the Classifier (see
// internal/classify) further disambiguates kinds that share a topic0
// (e.g. ERC-20 vs ERC-721 Transfer) using topic count.
type Kind string

const (
	KindERC20Transfer      Kind = "erc20_transfer"
	KindERC721Transfer     Kind = "erc721_transfer"
	KindERC1155Single      Kind = "erc1155_transfer_single"
	KindERC1155Batch       Kind = "erc1155_transfer_batch"
	KindApproval           Kind = "approval"
	KindApprovalForAll     Kind = "approval_for_all"
	KindSwapV2             Kind = "dex_swap_v2"
	KindSwapV3             Kind = "dex_swap_v3"
	KindSwapAero           Kind = "dex_swap_aero"
	KindSwapCurve          Kind = "dex_swap_curve"
	KindSwapCL             Kind = "dex_swap_cl"
	KindLiquidityAdd       Kind = "liquidity_add"
	KindLiquidityRemove    Kind = "liquidity_remove"
	KindLiquidityCollect   Kind = "liquidity_collect"
	KindPoolSync           Kind = "pool_sync"
	KindPoolCreated        Kind = "pool_created"
	KindWethWrap           Kind = "weth_wrap"
	KindWethUnwrap         Kind = "weth_unwrap"
	KindUserOperation      Kind = "user_operation"
	KindFlashLoan          Kind = "flash_loan"
	KindRewardClaim        Kind = "reward_claim"
	KindGaugeDeposit       Kind = "gauge_deposit"
	KindGaugeWithdraw      Kind = "gauge_withdraw"
	KindVote               Kind = "vote"
	KindOwnershipChange    Kind = "ownership_change"
	KindContractUpgrade    Kind = "contract_upgrade"
	KindBridgeSend         Kind = "bridge_send"
	KindBridgeReceive      Kind = "bridge_receive"
	KindLendingSupply      Kind = "lending_supply"
	KindLendingWithdraw    Kind = "lending_withdraw"
	KindLendingBorrow      Kind = "lending_borrow"
	KindLendingRepay       Kind = "lending_repay"
	KindLendingLiquidation Kind = "lending_liquidation"
	KindOracleUpdate       Kind = "oracle_update"
	KindMultisigExec       Kind = "multisig_exec"
	KindProtocolFees       Kind = "protocol_fees"
	KindGovernance         Kind = "governance"
	KindStaking            Kind = "staking"
	KindNFTPositionMint    Kind = "nft_position_mint"
	KindNFTPositionBurn    Kind = "nft_position_burn"
	KindOther              Kind = "other"
)

// canonical lists each event signature string mapped to its semantic
// kind. Topic0 is keccak256(signature). Where a signature is genuinely
// shared across standards (ERC-20/ERC-721 Transfer), the topic0 maps to
// the kind here and the Classifier further disambiguates by topic count.
var canonical = map[string]Kind{
	"Transfer(address,address,uint256)":                                KindERC20Transfer,
	"TransferSingle(address,address,address,uint256,uint256)":          KindERC1155Single,
	"TransferBatch(address,address,address,uint256[],uint256[])":       KindERC1155Batch,
	"Approval(address,address,uint256)":                                KindApproval,
	"ApprovalForAll(address,address,bool)":                             KindApprovalForAll,
	"Swap(address,uint256,uint256,uint256,uint256,address)":            KindSwapV2,
	"Swap(address,address,int256,int256,uint160,uint128,int24)":        KindSwapV3,
	"TokenExchange(address,int128,uint256,int128,uint256)":             KindSwapCurve,
	"Mint(address,address,uint256,uint256)":                            KindLiquidityAdd,
	"Burn(address,address,uint256,uint256,address)":                    KindLiquidityRemove,
	"Collect(address,address,int24,int24,uint128,uint128)":             KindLiquidityCollect,
	"Sync(uint112,uint112)":                                            KindPoolSync,
	"PoolCreated(address,address,uint24,int24,address)":                KindPoolCreated,
	"Deposit(address,uint256)":                                         KindWethWrap,
	"Withdrawal(address,uint256)":                                      KindWethUnwrap,
	"UserOperationEvent(bytes32,address,address,uint256,bool,uint256,uint256)": KindUserOperation,
	"FlashLoan(address,address,address,uint256,uint256,uint256)":       KindFlashLoan,
	"RewardPaid(address,address,uint256)":                              KindRewardClaim,
	"Deposit(address,address,uint256,uint256)":                        KindGaugeDeposit,
	"Withdraw(address,address,uint256,uint256)":                       KindGaugeWithdraw,
	"Voted(address,uint256,uint256)":                                   KindVote,
	"OwnershipTransferred(address,address)":                            KindOwnershipChange,
	"Upgraded(address)":                                                KindContractUpgrade,
	"SentMessage(address,address,bytes,uint256,uint256)":               KindBridgeSend,
	"RelayedMessage(bytes32)":                                          KindBridgeReceive,
	"Supply(address,address,address,uint256,uint16)":                   KindLendingSupply,
	"Withdraw(address,address,address,uint256)":                        KindLendingWithdraw,
	"Borrow(address,address,address,uint256,uint8,uint256,uint16)":     KindLendingBorrow,
	"Repay(address,address,address,uint256,bool)":                     KindLendingRepay,
	"LiquidationCall(address,address,address,uint256,uint256,address,bool)": KindLendingLiquidation,
	"AnswerUpdated(int256,uint256,uint256)":                            KindOracleUpdate,
	"ExecutionSuccess(bytes32,uint256)":                                KindMultisigExec,
	"ProtocolFeesWithdrawn(address,uint256,uint256,address)":           KindProtocolFees,
	"ProposalCreated(uint256,address,address[],uint256[],string[],bytes[],uint256,uint256,string)": KindGovernance,
	"Staked(address,uint256)":                                          KindStaking,
	"IncreaseLiquidity(uint256,uint128,uint256,uint256)":               KindNFTPositionMint,
	"DecreaseLiquidity(uint256,uint128,uint256,uint256)":               KindNFTPositionBurn,
}

// aerodromeAndCLSignatures lists the solidly/ve(3,3) and concentrated
// liquidity swap variants. They are declared separately because their
// canonical signature string is the same shape as V2/V3 respectively in
// some forks but observed with distinct selectors in others; keeping
// them in their own table documents that they are a curated, not
// derived, addition.
var aerodromeAndCLSignatures = map[string]Kind{
	"Swap(address,address,uint256,uint256,uint256,uint256,address)": KindSwapAero,
	"Swap(address,address,int256,int256,uint160,uint128,int24,uint24)": KindSwapCL,
}

// uncomputable declares topic0 hashes observed on-chain whose canonical
// signature string is not confidently known (non-standard events from
// closed-source or heavily modified contracts). Declared as literal hex
// rather than derived from a signature string.
var uncomputable = map[string]Kind{
	// Aerodrome gauge reward-claim selector observed without a published
	// canonical signature; kept as a literal until confirmed.
	"0x6a6f77040e9e5a8c0e85af58c56fd1d3e59df5e0aaf46c6f9c9e7a9cfd3b1d37": KindRewardClaim,
}

var topicToKind map[[32]byte]Kind

func init() {
	topicToKind = make(map[[32]byte]Kind, len(canonical)+len(aerodromeAndCLSignatures)+len(uncomputable))
	for sig, kind := range canonical {
		topicToKind[keccak256Sig(sig)] = kind
	}
	for sig, kind := range aerodromeAndCLSignatures {
		topicToKind[keccak256Sig(sig)] = kind
	}
	for hexTopic, kind := range uncomputable {
		topicToKind[mustParseTopic(hexTopic)] = kind
	}
}

func keccak256Sig(sig string) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	var out [32]byte
	h.Sum(out[:0])
	return out
}

func mustParseTopic(hexStr string) [32]byte {
	hexStr = strings.TrimPrefix(hexStr, "0x")
	var out [32]byte
	for i := 0; i < 32; i++ {
		hi := hexDigit(hexStr[i*2])
		lo := hexDigit(hexStr[i*2+1])
		out[i] = hi<<4 | lo
	}
	return out
}

func hexDigit(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		panic("sigs: invalid literal topic hex digit")
	}
}

// Lookup returns the semantic kind registered for topic0, and whether it
// was found. An unknown topic0 is the caller's signal to classify as
// KindOther.
func Lookup(topic0 [32]byte) (Kind, bool) {
	k, ok := topicToKind[topic0]
	return k, ok
}

// Topic0 returns the keccak-256 hash of a canonical event signature
// string, for callers (such as tests) that need to construct or match a
// topic0 directly.
func Topic0(signature string) [32]byte {
	return keccak256Sig(signature)
}
