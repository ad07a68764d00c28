package batched

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-bench/common"
	"github.com/Carmen-Shannon/oxy-bench/engine/backend"
	"github.com/Carmen-Shannon/oxy-bench/engine/camera"
	"github.com/Carmen-Shannon/oxy-bench/engine/settings"
	"github.com/Carmen-Shannon/oxy-bench/engine/sim"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

const shaderSource = `
struct SceneUniforms {
	viewProjection : mat4x4f,
}

@group(0) @binding(0) var<uniform> scene : SceneUniforms;
@group(0) @binding(1) var<storage, read> instances : array<mat4x4f>;

struct VertexOutput {
	@builtin(position) clipPosition : vec4f,
	@location(0) worldNormal : vec3f,
}

@vertex
fn vs_main(
	@builtin(instance_index) instanceIndex : u32,
	@location(0) localPosition : vec3f,
	@location(1) localNormal : vec3f,
) -> VertexOutput {
	let model = instances[instanceIndex];
	var output : VertexOutput;
	output.clipPosition = scene.viewProjection * (model * vec4f(localPosition, 1.0));
	output.worldNormal = normalize((model * vec4f(localNormal, 0.0)).xyz);
	return output;
}

@fragment
fn fs_main(input : VertexOutput) -> @location(0) vec4f {
	let sun = normalize(vec3f(-0.3, 0.9, 0.3));
	let diffuse = max(dot(input.worldNormal, sun), 0.0);
	let base = vec3f(0.45, 0.42, 0.4);
	return vec4f(base * (0.2 + 0.8 * diffuse), 1.0);
}
`

// indirectArgsSize is five uint32 draw arguments: index count, instance
// count, first index, base vertex, first instance.
const indirectArgsSize = 5 * 4

// batchedBackend renders the whole field in one instanced draw sourced from
// a storage buffer written once per frame, optionally reading the draw
// arguments from a GPU buffer. It paces the CPU against the GPU queue, so it
// also implements backend.ReadyWaiter.
type batchedBackend struct {
	cfg   *settings.Settings
	field *sim.Field

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	surface       *wgpu.Surface
	surfaceFormat wgpu.TextureFormat
	depthView     *wgpu.TextureView
	passDesc      *wgpu.RenderPassDescriptor

	pipeline    *wgpu.RenderPipeline
	bindGroup   *wgpu.BindGroup
	vertexBuf   *wgpu.Buffer
	indexBuf    *wgpu.Buffer
	sceneBuf    *wgpu.Buffer
	instanceBuf *wgpu.Buffer
	indirectBuf *wgpu.Buffer
	indexCount  int

	framesInFlight int
}

var (
	_ backend.Backend     = &batchedBackend{}
	_ backend.ReadyWaiter = &batchedBackend{}
)

// maxFramesInFlight bounds how far the CPU may run ahead of the GPU before
// WaitForReadyToRender blocks.
const maxFramesInFlight = 2

// New creates the batched backend: requests an adapter and device, uploads
// the shared mesh and pre-writes the indirect draw arguments. Swap-chain
// resources are created on the first ResizeSwapChain.
//
// Parameters:
//   - field: the asteroid field to render
//   - cfg: the session settings
//
// Returns:
//   - backend.Backend: the backend
//   - error: non-nil when no suitable adapter or device exists
func New(field *sim.Field, cfg *settings.Settings) (backend.Backend, error) {
	b := &batchedBackend{
		cfg:      cfg,
		field:    field,
		instance: wgpu.CreateInstance(nil),
	}

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.WarpAdapter,
	})
	if err != nil {
		return nil, fmt.Errorf("batched: request adapter: %w", err)
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Batched Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("batched: request device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()

	if err := b.initBuffers(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *batchedBackend) Name() string {
	return "Batched"
}

// WaitForReadyToRender blocks until the GPU has drained enough queued frames
// that encoding another one will not grow the latency window.
func (b *batchedBackend) WaitForReadyToRender() {
	if b.framesInFlight < maxFramesInFlight {
		return
	}
	b.device.Poll(true, nil)
	b.framesInFlight = 0
}

func (b *batchedBackend) Render(frameTime float32, cam camera.Camera, cfg *settings.Settings) error {
	if b.surface == nil {
		return backend.ErrNoSwapChain
	}

	if cfg.Animate {
		b.field.Update(frameTime, cfg.MultithreadedRendering)
	}

	// Whole-field upload in one write; the draw below never touches the
	// instance data again.
	transforms := b.field.Transforms()
	b.queue.WriteBuffer(b.instanceBuf, 0, common.SliceToBytes(transforms))

	vp := cam.ViewProjection()
	b.queue.WriteBuffer(b.sceneBuf, 0, common.StructToBytes(&vp))

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("batched: acquire swap chain texture: %w", err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("batched: create surface view: %w", err)
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return fmt.Errorf("batched: create command encoder: %w", err)
	}

	b.passDesc.ColorAttachments[0].View = view
	pass := encoder.BeginRenderPass(b.passDesc)
	pass.SetPipeline(b.pipeline)
	pass.SetBindGroup(0, b.bindGroup, nil)
	pass.SetVertexBuffer(0, b.vertexBuf, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(b.indexBuf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	if cfg.ExecuteIndirect {
		pass.DrawIndexedIndirect(b.indirectBuf, 0)
	} else {
		pass.DrawIndexed(uint32(b.indexCount), uint32(b.field.Count()), 0, 0, 0)
	}
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		view.Release()
		surfaceTexture.Release()
		return fmt.Errorf("batched: finish encoder: %w", err)
	}

	if cfg.SubmitRendering {
		b.queue.Submit(commandBuffer)
		b.framesInFlight++
	}
	commandBuffer.Release()
	encoder.Release()

	b.surface.Present()
	view.Release()
	surfaceTexture.Release()
	return nil
}

func (b *batchedBackend) ResizeSwapChain(surface backend.Surface, width, height int) error {
	descriptor, ok := surface.(*wgpu.SurfaceDescriptor)
	if !ok || descriptor == nil {
		return fmt.Errorf("batched: unsupported surface handle %T", surface)
	}
	if b.surface == nil {
		b.surface = b.instance.CreateSurface(descriptor)
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]

	presentMode := wgpu.PresentModeImmediate
	if b.cfg.VSync {
		presentMode = wgpu.PresentModeFifo
	}
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if b.depthView != nil {
		b.depthView.Release()
	}
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Batched Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("batched: create depth texture: %w", err)
	}
	b.depthView, err = depthTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("batched: create depth view: %w", err)
	}
	depthTexture.Release()

	b.passDesc = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: 0.01, G: 0.01, B: 0.02, A: 1.0,
				},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}

	if b.pipeline == nil {
		if err := b.initPipeline(); err != nil {
			return err
		}
	}
	return nil
}

func (b *batchedBackend) ReleaseSwapChain() {
	if b.depthView != nil {
		b.depthView.Release()
		b.depthView = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	b.passDesc = nil
	b.framesInFlight = 0
}

// initBuffers uploads the shared mesh, allocates the per-frame buffers and
// pre-writes the indirect draw arguments, which never change.
func (b *batchedBackend) initBuffers() error {
	vertices, indices := b.field.Mesh()
	b.indexCount = len(indices)

	vertexData := common.SliceToBytes(vertices)
	vertexBuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Batched Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("batched: create vertex buffer: %w", err)
	}
	b.queue.WriteBuffer(vertexBuf, 0, vertexData)
	b.vertexBuf = vertexBuf

	indexData := common.SliceToBytes(indices)
	indexBuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Batched Index Buffer",
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("batched: create index buffer: %w", err)
	}
	b.queue.WriteBuffer(indexBuf, 0, indexData)
	b.indexBuf = indexBuf

	var scene mgl32.Mat4
	matSize := uint64(len(common.StructToBytes(&scene)))
	b.sceneBuf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Batched Scene Buffer",
		Size:  matSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("batched: create scene buffer: %w", err)
	}

	b.instanceBuf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Batched Instance Buffer",
		Size:  uint64(b.field.Count()) * matSize,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("batched: create instance buffer: %w", err)
	}

	b.indirectBuf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Batched Indirect Buffer",
		Size:  indirectArgsSize,
		Usage: wgpu.BufferUsageIndirect | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("batched: create indirect buffer: %w", err)
	}
	args := []uint32{uint32(b.indexCount), uint32(b.field.Count()), 0, 0, 0}
	b.queue.WriteBuffer(b.indirectBuf, 0, common.SliceToBytes(args))
	return nil
}

// initPipeline builds the render pipeline and bind group. Deferred to the
// first resize because the surface format is not known earlier.
func (b *batchedBackend) initPipeline() error {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Batched Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: shaderSource,
		},
	})
	if err != nil {
		return fmt.Errorf("batched: create shader module: %w", err)
	}

	bindGroupLayout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Batched Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeUniform,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeReadOnlyStorage,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("batched: create bind group layout: %w", err)
	}

	b.bindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Batched Bind Group",
		Layout: bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.sceneBuf, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: b.instanceBuf, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("batched: create bind group: %w", err)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Batched Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bindGroupLayout},
	})
	if err != nil {
		return fmt.Errorf("batched: create pipeline layout: %w", err)
	}

	b.pipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Batched Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: 6 * 4,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("batched: create render pipeline: %w", err)
	}
	return nil
}
