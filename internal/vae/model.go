package vae

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/born-vae/internal/nn"
	"github.com/born-ml/born-vae/internal/tensor"
)

// Parameter name prefixes.
const (
	encoderHidden     = "encoder.hidden"
	encoderMu         = "encoder.mu"
	encoderLogSigmaSq = "encoder.log_sigma_sq"
	decoderHidden     = "decoder.hidden"
	decoderOut        = "decoder.out"
)

// Encoder maps an input batch to the parameters of a diagonal Gaussian
// posterior over the latent variable.
//
// Architecture:
//
//	h            = act(W_h @ x + b_h)      [batch, hidden, 1]
//	mu           = W_mu @ h + b_mu         [batch, latent, 1]
//	log_sigma_sq = W_ls @ h + b_ls         [batch, latent, 1]
type Encoder struct {
	hidden     *nn.Sequential
	mu         *nn.Dense
	logSigmaSq *nn.Dense
}

// EncoderOutput holds the posterior parameters for one batch.
type EncoderOutput struct {
	Mu         *tensor.Tensor
	LogSigmaSq *tensor.Tensor
	SigmaSq    *tensor.Tensor // exp(LogSigmaSq)
	Sigma      *tensor.Tensor // sqrt(SigmaSq)
}

// NewEncoder allocates the encoder's three affine layers from factory.
func NewEncoder(factory *nn.WeightFactory, inputDim, hiddenDim, latentDim int, act nn.Activation) *Encoder {
	return &Encoder{
		hidden:     nn.NewSequential(factory.Dense(encoderHidden, inputDim, hiddenDim), act),
		mu:         factory.Dense(encoderMu, hiddenDim, latentDim),
		logSigmaSq: factory.Dense(encoderLogSigmaSq, hiddenDim, latentDim),
	}
}

// Forward computes the posterior parameters of x ([batch, input, 1]).
//
// exp(log σ²) is not clipped; an overflow surfaces as a non-finite loss.
func (e *Encoder) Forward(backend tensor.Backend, x *tensor.Tensor) EncoderOutput {
	h := e.hidden.Forward(backend, x)
	mu := e.mu.Forward(backend, h)
	logSigmaSq := e.logSigmaSq.Forward(backend, h)
	sigmaSq := backend.Exp(logSigmaSq)

	return EncoderOutput{
		Mu:         mu,
		LogSigmaSq: logSigmaSq,
		SigmaSq:    sigmaSq,
		Sigma:      backend.Sqrt(sigmaSq),
	}
}

// Parameters returns the encoder parameters in creation order.
func (e *Encoder) Parameters() []*nn.Parameter {
	params := e.hidden.Parameters()
	params = append(params, e.mu.Parameters()...)
	return append(params, e.logSigmaSq.Parameters()...)
}

// Decoder maps a latent sample to per-pixel Bernoulli logits.
//
// Architecture:
//
//	h      = act(W_h @ z + b_h)   [batch, hidden, 1]
//	logits = W_o @ h + b_o        [batch, input, 1]
type Decoder struct {
	hidden *nn.Sequential
	out    *nn.Dense
}

// DecoderOutput holds the reconstruction for one batch.
type DecoderOutput struct {
	Logits *tensor.Tensor // pre-sigmoid; consumed by the loss
	Probs  *tensor.Tensor // sigmoid(Logits)
}

// NewDecoder allocates the decoder's two affine layers from factory.
func NewDecoder(factory *nn.WeightFactory, latentDim, hiddenDim, inputDim int, act nn.Activation) *Decoder {
	return &Decoder{
		hidden: nn.NewSequential(factory.Dense(decoderHidden, latentDim, hiddenDim), act),
		out:    factory.Dense(decoderOut, hiddenDim, inputDim),
	}
}

// Forward decodes z ([batch, latent, 1]).
func (d *Decoder) Forward(backend tensor.Backend, z *tensor.Tensor) DecoderOutput {
	logits := d.out.Forward(backend, d.hidden.Forward(backend, z))
	return DecoderOutput{
		Logits: logits,
		Probs:  backend.Sigmoid(logits),
	}
}

// Parameters returns the decoder parameters in creation order.
func (d *Decoder) Parameters() []*nn.Parameter {
	return append(d.hidden.Parameters(), d.out.Parameters()...)
}

// Reparameterize draws z = mu + sigma * eps.
//
// mu and sigma have shape [batch, latent, 1]; eps has shape [1, latent, 1]
// and is broadcast over the batch, so one noise vector serves every example.
// The result is differentiable with respect to mu and sigma.
func Reparameterize(backend tensor.Backend, mu, sigma, eps *tensor.Tensor) *tensor.Tensor {
	return backend.Add(mu, backend.Mul(sigma, eps))
}

// LossTerms holds the scalar objective and its per-example parts.
type LossTerms struct {
	KL             *tensor.Tensor // [batch, 1, 1]
	Reconstruction *tensor.Tensor // [batch, 1, 1]
	WeightDecay    *tensor.Tensor // scalar, nil when disabled
	Total          *tensor.Tensor // scalar
}

// Loss computes the negative ELBO:
//
//	mean_batch(KL + reconstruction) + (lambda / 2) * Σ ‖p‖²
//
// The decay term is added only when lambda > 0.
func Loss(backend tensor.Backend, posterior EncoderOutput, logits, x *tensor.Tensor, params []*nn.Parameter, lambda float32) LossTerms {
	kl := nn.KLDivergence(backend, posterior.Mu, posterior.LogSigmaSq, posterior.SigmaSq)
	recon := nn.BinaryCrossEntropyWithLogits(backend, logits, x)
	total := backend.Mean(backend.Add(kl, recon))

	decay := nn.WeightDecay(backend, params, lambda)
	if decay != nil {
		total = backend.Add(total, decay)
	}

	return LossTerms{
		KL:             kl,
		Reconstruction: recon,
		WeightDecay:    decay,
		Total:          total,
	}
}

// Model is the full VAE: an Encoder and a Decoder sized by a Config.
type Model struct {
	cfg     Config
	encoder *Encoder
	decoder *Decoder
}

// Output collects every intermediate of one forward pass.
type Output struct {
	Posterior      EncoderOutput
	Z              *tensor.Tensor
	Reconstruction DecoderOutput
	Loss           LossTerms
}

// NewModel allocates a model for cfg, drawing initial weights from rng.
// Encoder weights are drawn before decoder weights.
func NewModel(cfg Config, rng *rand.Rand) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factory := nn.NewWeightFactory(cfg.BatchSize, cfg.InitStd, cfg.ParameterSharing, rng)
	return &Model{
		cfg:     cfg,
		encoder: NewEncoder(factory, cfg.InputDim, cfg.HiddenDim, cfg.LatentDim, cfg.Activation),
		decoder: NewDecoder(factory, cfg.LatentDim, cfg.HiddenDim, cfg.InputDim, cfg.Activation),
	}, nil
}

// Encoder returns the inference network.
func (m *Model) Encoder() *Encoder {
	return m.encoder
}

// Decoder returns the generative network.
func (m *Model) Decoder() *Decoder {
	return m.decoder
}

// Parameters returns all trainable parameters, encoder first.
func (m *Model) Parameters() []*nn.Parameter {
	return append(m.encoder.Parameters(), m.decoder.Parameters()...)
}

// Forward runs encoder, sampler, decoder and loss on one batch.
//
// x has shape [batch, input] and eps has shape [latent]. Neither is
// modified; both are viewed in the column layout without copying.
func (m *Model) Forward(backend tensor.Backend, x, eps *tensor.Tensor) (*Output, error) {
	xCol, err := m.batchColumn(x)
	if err != nil {
		return nil, err
	}
	epsCol, err := m.noiseColumn(eps)
	if err != nil {
		return nil, err
	}

	posterior := m.encoder.Forward(backend, xCol)
	z := Reparameterize(backend, posterior.Mu, posterior.Sigma, epsCol)
	recon := m.decoder.Forward(backend, z)
	loss := Loss(backend, posterior, recon.Logits, xCol, m.Parameters(), m.cfg.WeightDecay)

	return &Output{
		Posterior:      posterior,
		Z:              z,
		Reconstruction: recon,
		Loss:           loss,
	}, nil
}

// Reconstruct returns sigmoid reconstructions of x as [batch, input].
func (m *Model) Reconstruct(backend tensor.Backend, x, eps *tensor.Tensor) (*tensor.Tensor, error) {
	out, err := m.Forward(backend, x, eps)
	if err != nil {
		return nil, err
	}
	return out.Reconstruction.Probs.View(tensor.Shape{m.cfg.BatchSize, m.cfg.InputDim})
}

func (m *Model) batchColumn(x *tensor.Tensor) (*tensor.Tensor, error) {
	want := tensor.Shape{m.cfg.BatchSize, m.cfg.InputDim}
	if !x.Shape().Equal(want) {
		return nil, fmt.Errorf("%w: shape %v, want %v", ErrInvalidBatch, x.Shape(), want)
	}
	return x.View(tensor.Shape{m.cfg.BatchSize, m.cfg.InputDim, 1})
}

func (m *Model) noiseColumn(eps *tensor.Tensor) (*tensor.Tensor, error) {
	if eps.NumElements() != m.cfg.LatentDim {
		return nil, fmt.Errorf("%w: noise has %d elements, latent dim is %d", ErrConfiguration, eps.NumElements(), m.cfg.LatentDim)
	}
	return eps.View(tensor.Shape{1, m.cfg.LatentDim, 1})
}
