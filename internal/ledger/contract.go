package ledger

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"medilink/config"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

const registryABI = `[
  {"inputs":[{"components":[
      {"internalType":"string","name":"name","type":"string"},
      {"internalType":"string","name":"licenseNo","type":"string"},
      {"internalType":"string","name":"specialization","type":"string"},
      {"internalType":"uint256","name":"experience","type":"uint256"},
      {"internalType":"string","name":"phone","type":"string"},
      {"internalType":"string","name":"email","type":"string"},
      {"internalType":"string","name":"hospital","type":"string"}
    ],"internalType":"struct ValidationContract.Doctor","name":"doctor","type":"tuple"}],
   "name":"addDoctor","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[{"components":[
      {"internalType":"string","name":"name","type":"string"},
      {"internalType":"string","name":"licenseId","type":"string"},
      {"internalType":"string","name":"location","type":"string"},
      {"internalType":"string","name":"contactNumber","type":"string"},
      {"internalType":"string","name":"email","type":"string"},
      {"internalType":"uint256","name":"beds","type":"uint256"},
      {"internalType":"string","name":"departments","type":"string"}
    ],"internalType":"struct ValidationContract.Hospital","name":"hospital","type":"tuple"}],
   "name":"addHospital","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// Field names follow the ABI component names so the tuple packs by name.
type hospitalTuple struct {
	Name          string
	LicenseId     string
	Location      string
	ContactNumber string
	Email         string
	Beds          *big.Int
	Departments   string
}

type doctorTuple struct {
	Name           string
	LicenseNo      string
	Specialization string
	Experience     *big.Int
	Phone          string
	Email          string
	Hospital       string
}

func toHospitalTuple(r HospitalRecord) hospitalTuple {
	return hospitalTuple{
		Name:          r.Name,
		LicenseId:     r.LicenseID,
		Location:      r.Location,
		ContactNumber: r.ContactNumber,
		Email:         r.Email,
		Beds:          big.NewInt(int64(r.Beds)),
		Departments:   r.Departments,
	}
}

func toDoctorTuple(r DoctorRecord) doctorTuple {
	return doctorTuple{
		Name:           r.Name,
		LicenseNo:      r.LicenseNo,
		Specialization: r.Specialization,
		Experience:     big.NewInt(int64(r.Experience)),
		Phone:          r.Phone,
		Email:          r.Email,
		Hospital:       r.Hospital,
	}
}

func parseRegistryABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(registryABI))
}

type registryBackend interface {
	bind.ContractBackend
	bind.DeployBackend
}

type contractRegistry struct {
	backend  registryBackend
	contract *bind.BoundContract
	opts     *bind.TransactOpts
	timeout  time.Duration
	log      *logrus.Logger
	closer   func()

	// sendMu serializes submissions so each one signs with its own nonce. nonce is the
	// next one to use; nil means ask the node.
	sendMu sync.Mutex
	nonce  *uint64
}

func newBoundRegistry(backend registryBackend, address common.Address, opts *bind.TransactOpts, timeout time.Duration, log *logrus.Logger) (*contractRegistry, error) {
	parsed, err := parseRegistryABI()
	if err != nil {
		return nil, fmt.Errorf("parse registry abi: %w", err)
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &contractRegistry{
		backend:  backend,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
		opts:     opts,
		timeout:  timeout,
		log:      log,
	}, nil
}

func newContractRegistry(ctx context.Context, cfg config.LedgerConfig, log *logrus.Logger) (*contractRegistry, error) {
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid ledger contract address %q", cfg.ContractAddress)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse ledger private key: %w", err)
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial ledger rpc: %w", err)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(cfg.ChainID))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("build ledger transactor: %w", err)
	}

	address := common.HexToAddress(cfg.ContractAddress)
	registry, err := newBoundRegistry(client, address, opts, cfg.Timeout, log)
	if err != nil {
		client.Close()
		return nil, err
	}
	registry.closer = client.Close

	log.Infof("Ledger registry enabled: contract=%s chain=%d", address.Hex(), cfg.ChainID)
	return registry, nil
}

func (r *contractRegistry) RegisterHospital(ctx context.Context, record HospitalRecord) (string, error) {
	return r.submit(ctx, "addHospital", toHospitalTuple(record))
}

func (r *contractRegistry) RegisterDoctor(ctx context.Context, record DoctorRecord) (string, error) {
	return r.submit(ctx, "addDoctor", toDoctorTuple(record))
}

func (r *contractRegistry) submit(ctx context.Context, method string, tuple interface{}) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.send(ctx, method, tuple)
	if err != nil {
		r.log.Warnf("Ledger %s submit failed: %+v", method, err)
		return "", fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	receipt, err := bind.WaitMined(ctx, r.backend, tx)
	if err != nil {
		r.log.Warnf("Ledger %s tx %s not mined: %+v", method, tx.Hash().Hex(), err)
		r.resetNonce()
		return "", fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("%w: %s reverted in tx %s", ErrLedgerUnavailable, method, tx.Hash().Hex())
	}

	r.log.Infof("Ledger %s mined: tx=%s block=%s", method, tx.Hash().Hex(), receipt.BlockNumber)
	return tx.Hash().Hex(), nil
}

// send signs and broadcasts one call. Mining is awaited outside the lock so submissions
// can pipeline.
func (r *contractRegistry) send(ctx context.Context, method string, tuple interface{}) (*types.Transaction, error) {
	r.sendMu.Lock()
	defer r.sendMu.Unlock()

	if r.nonce == nil {
		n, err := r.backend.PendingNonceAt(ctx, r.opts.From)
		if err != nil {
			return nil, fmt.Errorf("read pending nonce: %w", err)
		}
		r.nonce = &n
	}

	opts := *r.opts
	opts.Context = ctx
	opts.Nonce = new(big.Int).SetUint64(*r.nonce)

	tx, err := r.contract.Transact(&opts, method, tuple)
	if err != nil {
		r.nonce = nil
		return nil, err
	}
	next := *r.nonce + 1
	r.nonce = &next
	return tx, nil
}

// resetNonce makes the next submission re-read the nonce from the node.
func (r *contractRegistry) resetNonce() {
	r.sendMu.Lock()
	r.nonce = nil
	r.sendMu.Unlock()
}

// Close releases the RPC connection.
func (r *contractRegistry) Close() {
	if r.closer != nil {
		r.closer()
	}
}
