package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"pulsebridge-consult/config"
	"pulsebridge-consult/internal/domain/gateway"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

const receiptPollInterval = 2 * time.Second

// Client is the JSON-RPC connection shared by the contract gateways. It also
// resolves transaction receipts.
type Client struct {
	eth     *ethclient.Client
	signer  Signer
	chainID *big.Int
	log     *logrus.Logger
}

func Dial(ctx context.Context, cfg config.ChainConfig, signer Signer, log *logrus.Logger) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial chain rpc: %w", err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}
	if chainID.Int64() != cfg.ChainID {
		eth.Close()
		return nil, fmt.Errorf("rpc serves chain %s, configured %d", chainID, cfg.ChainID)
	}

	log.Infof("Connected to chain %d (%s)", cfg.ChainID, cfg.Network.Name)

	return &Client{
		eth:     eth,
		signer:  signer,
		chainID: chainID,
		log:     log,
	}, nil
}

func (c *Client) Close() {
	c.eth.Close()
}

func (c *Client) bound(address common.Address, parsed abi.ABI) *bind.BoundContract {
	return bind.NewBoundContract(address, parsed, c.eth, c.eth, c.eth)
}

func (c *Client) callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

// asRevert tags gas estimation failures caused by a contract revert.
func asRevert(err error) error {
	if err != nil && strings.Contains(err.Error(), "execution reverted") {
		return fmt.Errorf("%w: %v", gateway.ErrCallReverted, err)
	}
	return err
}

func (c *Client) transactOpts(ctx context.Context, from common.Address) (*bind.TransactOpts, error) {
	return c.signer.TransactOpts(ctx, from)
}

// WaitMined polls until the transaction has a receipt. A reverted
// transaction is returned together with gateway.ErrTransactionFailed.
func (c *Client) WaitMined(ctx context.Context, txHash string) (*gateway.TxReceipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, found, err := c.Receipt(ctx, txHash)
		if err != nil {
			return nil, err
		}
		if found {
			if !receipt.Success {
				return receipt, fmt.Errorf("%w: %s", gateway.ErrTransactionFailed, txHash)
			}
			return receipt, nil
		}

		c.log.Debugf("Transaction %s not yet mined", txHash)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) Receipt(ctx context.Context, txHash string) (*gateway.TxReceipt, bool, error) {
	receipt, err := c.eth.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return toReceipt(receipt), true, nil
}

func toReceipt(r *types.Receipt) *gateway.TxReceipt {
	var block uint64
	if r.BlockNumber != nil {
		block = r.BlockNumber.Uint64()
	}
	return &gateway.TxReceipt{
		TxHash:      r.TxHash.Hex(),
		BlockNumber: block,
		Success:     r.Status == types.ReceiptStatusSuccessful,
		Logs:        r.Logs,
	}
}
