package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/practical-formal-methods/minievm/state"
	"github.com/practical-formal-methods/minievm/vm"
)

type Account_msg struct {
	Balance string
	Code    string
}

type Tx_msg struct {
	From  string
	To    string
	Value string
	Input string
	Gas   uint64
}

type Scenario_msg struct {
	Accounts     map[string]*Account_msg
	Transactions []*Tx_msg
}

type TxResult_msg struct {
	Status       string
	HaltReason   string `json:",omitempty"`
	GasUsed      uint64
	GasRemaining uint64
	Output       string `json:",omitempty"`
}

type Result_msg struct {
	Transactions []*TxResult_msg
	Balances     map[string]string
}

var scenario *Scenario_msg

func read_scenario(path string) bool {
	filePtr, err := os.Open(path)
	if err != nil {
		fmt.Println("Can not open scenario file", err.Error())
		return false
	}
	defer filePtr.Close()

	decoder := json.NewDecoder(filePtr)
	err = decoder.Decode(&scenario)
	if err != nil {
		fmt.Println("Decode scenario file failed", err.Error())
		return false
	}
	fmt.Println("Decode scenario success")
	return true
}

func build_world() (*state.MemoryWorld, error) {
	world := state.NewMemoryWorld()
	for addr, msg := range scenario.Accounts {
		balance := new(uint256.Int)
		if msg.Balance != "" {
			if err := balance.SetFromHex(msg.Balance); err != nil {
				return nil, fmt.Errorf("account %v: bad balance %q: %v", addr, msg.Balance, err)
			}
		}
		world.CreateAccount(common.HexToAddress(addr), balance)
		if msg.Code != "" {
			code, err := hex.DecodeString(msg.Code)
			if err != nil {
				return nil, fmt.Errorf("account %v: bad code: %v", addr, err)
			}
			world.SetCode(common.HexToAddress(addr), code)
		}
	}
	return world, nil
}

func write_result(path string, result *Result_msg) {
	filePtr, err := os.Create(path)
	if err != nil {
		fmt.Println("Create result file failed", err.Error())
		return
	}
	defer filePtr.Close()

	encoder := json.NewEncoder(filePtr)
	encoder.SetIndent("", "  ")
	err = encoder.Encode(result)
	if err != nil {
		fmt.Println("Encode result file failed", err.Error())
	} else {
		fmt.Println("Encode result success")
	}
}

func main() {
	scenarioPath := "scenario.json"
	resultPath := "result.json"
	if len(os.Args) > 1 {
		scenarioPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		resultPath = os.Args[2]
	}

	if !read_scenario(scenarioPath) {
		os.Exit(1)
	}
	world, err := build_world()
	if err != nil {
		fmt.Println("Build world failed", err.Error())
		os.Exit(1)
	}

	interp := vm.NewInterpreter(world, vm.Config{Rules: vm.AllRules})

	result := &Result_msg{Balances: make(map[string]string)}
	for i, tx := range scenario.Transactions {
		value := new(uint256.Int)
		if tx.Value != "" {
			if err := value.SetFromHex(tx.Value); err != nil {
				fmt.Printf("\n[tx %d] bad value %q: %v\n", i, tx.Value, err)
				os.Exit(1)
			}
		}
		input, err := hex.DecodeString(tx.Input)
		if err != nil {
			fmt.Printf("\n[tx %d] bad input: %v\n", i, err)
			os.Exit(1)
		}

		res := interp.ExecuteTransaction(vm.TransactionParams{
			Sender: common.HexToAddress(tx.From),
			Target: common.HexToAddress(tx.To),
			Value:  value,
			Input:  input,
			Gas:    tx.Gas,
		})
		fmt.Printf("tx %d: %v (gas used %d)\n", i, res.Status, res.GasUsed)

		msg := &TxResult_msg{
			Status:       res.Status.String(),
			GasUsed:      res.GasUsed,
			GasRemaining: tx.Gas - res.GasUsed,
		}
		if res.Status == vm.ExceptionalHalt {
			msg.HaltReason = res.Halt.String()
		}
		if len(res.Output) > 0 {
			msg.Output = hex.EncodeToString(res.Output)
		}
		result.Transactions = append(result.Transactions, msg)
	}

	for _, addr := range world.Addresses() {
		acct := world.GetAccount(addr)
		result.Balances[addr.Hex()] = acct.Balance().Hex()
	}
	write_result(resultPath, result)
}
