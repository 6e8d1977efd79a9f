package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const erc20ABIJSON = `[
	{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"increaseAllowance","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"addedValue","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`

const registryABIJSON = `[
	{"type":"function","name":"getDoctor","stateMutability":"view","inputs":[{"name":"id","type":"uint32"}],"outputs":[{"name":"","type":"tuple","components":[
		{"name":"Name","type":"string"},
		{"name":"specialization","type":"string"},
		{"name":"profileDescription","type":"string"},
		{"name":"email","type":"string"},
		{"name":"doctorAddress","type":"address"},
		{"name":"consultationFeePerHour","type":"uint256"},
		{"name":"depositFeeStored","type":"uint256"},
		{"name":"legalDocumentsIPFSHash","type":"bytes32"}]}]},
	{"type":"function","name":"getPendingDoctorInfoByID","stateMutability":"view","inputs":[{"name":"id","type":"uint32"}],"outputs":[{"name":"","type":"tuple","components":[
		{"name":"Name","type":"string"},
		{"name":"specialization","type":"string"},
		{"name":"profileDescription","type":"string"},
		{"name":"email","type":"string"},
		{"name":"doctorAddress","type":"address"},
		{"name":"consultationFeePerHour","type":"uint256"},
		{"name":"depositFeeStored","type":"uint256"},
		{"name":"legalDocumentsIPFSHash","type":"bytes32"}]}]},
	{"type":"function","name":"numTotalRegistrations","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint32"}]},
	{"type":"function","name":"approveDoctor","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint32"}],"outputs":[]},
	{"type":"function","name":"denyDoctor","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint32"}],"outputs":[]}
]`

const escrowABIJSON = `[
	{"type":"function","name":"createSession","stateMutability":"payable","inputs":[
		{"name":"doctorId","type":"uint32"},
		{"name":"amount","type":"uint256"},
		{"name":"priceUpdate","type":"bytes[]"},
		{"name":"token","type":"address"},
		{"name":"startTime","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"releasePayment","stateMutability":"nonpayable","inputs":[
		{"name":"sessionId","type":"uint256"},
		{"name":"prescriptionIPFSHash","type":"string"}],"outputs":[]},
	{"type":"function","name":"rateSession","stateMutability":"nonpayable","inputs":[
		{"name":"sessionId","type":"uint256"},
		{"name":"rating","type":"uint8"}],"outputs":[]},
	{"type":"function","name":"getSession","stateMutability":"view","inputs":[{"name":"sessionId","type":"uint256"}],"outputs":[{"name":"","type":"tuple","components":[
		{"name":"sessionId","type":"uint256"},
		{"name":"patient","type":"address"},
		{"name":"doctorId","type":"uint32"},
		{"name":"pyusdAmount","type":"uint256"},
		{"name":"token","type":"address"},
		{"name":"startTime","type":"uint256"},
		{"name":"status","type":"uint8"},
		{"name":"prescriptionIPFSHash","type":"string"},
		{"name":"rating","type":"uint8"}]}]},
	{"type":"function","name":"getDoctorSessions","stateMutability":"view","inputs":[{"name":"doctorId","type":"uint32"}],"outputs":[{"name":"","type":"uint256[]"}]},
	{"type":"event","name":"SessionCreated","anonymous":false,"inputs":[
		{"name":"sessionId","type":"uint256","indexed":true},
		{"name":"patient","type":"address","indexed":true},
		{"name":"doctorId","type":"uint32","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}]}
]`

var (
	erc20ABI    = mustParseABI(erc20ABIJSON)
	registryABI = mustParseABI(registryABIJSON)
	escrowABI   = mustParseABI(escrowABIJSON)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}
